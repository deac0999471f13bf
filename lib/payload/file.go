// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bridgecheck/bridgecheck/lib/binhash"
)

// File is a host file with a known digest. Data is only kept for
// files this package generated.
type File struct {
	Path     string
	BaseName string
	Data     []byte
	Size     int
	Digest   binhash.Digest
}

// Close removes the file. Removing a file that is already gone is not
// an error.
func (f *File) Close() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// NewFile writes size random bytes to a new temp file in directory
// (the system temp directory when empty).
func (g *Generator) NewFile(directory string, size int, algorithm binhash.Algorithm) (*File, error) {
	data, err := g.Bytes(size)
	if err != nil {
		return nil, err
	}
	return writeTemp(directory, "bridgecheck-*", data, algorithm)
}

func writeTemp(directory, pattern string, data []byte, algorithm binhash.Algorithm) (*File, error) {
	handle, err := os.CreateTemp(directory, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating payload file: %w", err)
	}
	path := handle.Name()

	if _, err := handle.Write(data); err != nil {
		handle.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing payload %s: %w", path, err)
	}
	if err := handle.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing payload %s: %w", path, err)
	}

	return &File{
		Path:     path,
		BaseName: filepath.Base(path),
		Data:     data,
		Size:     len(data),
		Digest:   binhash.Sum(algorithm, data),
	}, nil
}

// Pulled digests a file that arrived from a device. The content is
// streamed, not kept.
func Pulled(path string, algorithm binhash.Algorithm) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading pulled file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("pulled file %s is not a regular file", path)
	}
	digest, err := binhash.HashFile(algorithm, path)
	if err != nil {
		return nil, fmt.Errorf("reading pulled file: %w", err)
	}
	return &File{
		Path:     path,
		BaseName: filepath.Base(path),
		Size:     int(info.Size()),
		Digest:   digest,
	}, nil
}
