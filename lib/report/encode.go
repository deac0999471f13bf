// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/bridgecheck/bridgecheck/lib/codec"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Compression is an optional outer compression layer.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionZstd Compression = "zst"
	CompressionLZ4  Compression = "lz4"
)

// ParsePath derives the encoding and compression from a report file
// name, for example "run.yaml.zst" or "run.cbor".
func ParsePath(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	switch filepath.Ext(name) {
	case ".zst":
		compression = CompressionZstd
	case ".lz4":
		compression = CompressionLZ4
	}
	if compression != CompressionNone {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compression, nil
	case ".yaml", ".yml":
		return FormatYAML, compression, nil
	case ".cbor":
		return FormatCBOR, compression, nil
	default:
		return "", "", fmt.Errorf("report path %q: extension must be .json, .yaml, or .cbor, optionally followed by .zst or .lz4", path)
	}
}

// Encode writes report to w in format.
func Encode(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	case FormatCBOR:
		return codec.NewEncoder(w).Encode(report)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Decode reads a report in format from r.
func Decode(r io.Reader, format Format) (*Report, error) {
	var report Report
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&report)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&report)
	case FormatCBOR:
		err = codec.NewDecoder(r).Decode(&report)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s report: %w", format, err)
	}
	return &report, nil
}

// Write encodes report to path, choosing the encoding and compression
// from the file name. The file is written to a temporary name in the
// same directory and renamed into place, so a reader never sees a
// partial report.
func Write(path string, report *Report) (err error) {
	format, compression, err := ParsePath(path)
	if err != nil {
		return err
	}

	directory := filepath.Dir(path)
	file, err := os.CreateTemp(directory, ".report-*")
	if err != nil {
		return fmt.Errorf("creating report in %s: %w", directory, err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	writer, err := compressor(file, compression)
	if err != nil {
		return err
	}
	if err := Encode(writer, report, format); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finishing %s stream: %w", compression, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	if err := os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("moving report into place: %w", err)
	}
	return nil
}

// Read decodes the report at path, choosing the encoding and
// compression from the file name.
func Read(path string) (*Report, error) {
	format, compression, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := decompressor(file, compression)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return Decode(reader, format)
}

// ReadRaw returns the decompressed bytes of the report at path, for
// tools that inspect the encoding itself.
func ReadRaw(path string) ([]byte, Format, error) {
	format, compression, err := ParsePath(path)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	reader, err := decompressor(file, compression)
	if err != nil {
		return nil, "", err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return data, format, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		return encoder, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
}

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func decompressor(r io.Reader, compression Compression) (io.ReadCloser, error) {
	switch compression {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		return zstdReadCloser{decoder}, nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, errors.New("unknown compression " + string(compression))
	}
}
