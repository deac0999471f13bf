// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Algorithm names a digest function.
type Algorithm string

const (
	MD5     Algorithm = "md5"
	SHA1    Algorithm = "sha1"
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"
	BLAKE3  Algorithm = "blake3"
)

// Algorithms lists every supported algorithm, default first.
var Algorithms = []Algorithm{MD5, SHA1, SHA256, BLAKE2b, BLAKE3}

// ParseAlgorithm validates an algorithm name. The empty string selects
// MD5.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return MD5, nil
	}
	algorithm := Algorithm(strings.ToLower(name))
	for _, known := range Algorithms {
		if algorithm == known {
			return algorithm, nil
		}
	}
	return "", fmt.Errorf("unknown digest algorithm %q (valid: %s)", name, joinAlgorithms())
}

func joinAlgorithms() string {
	names := make([]string, len(Algorithms))
	for i, algorithm := range Algorithms {
		names[i] = string(algorithm)
	}
	return strings.Join(names, ", ")
}

// Size returns the digest length in bytes.
func (a Algorithm) Size() int {
	switch a {
	case MD5:
		return md5.Size
	case SHA1:
		return sha1.Size
	case SHA256:
		return sha256.Size
	case BLAKE2b, BLAKE3:
		return 32
	default:
		return 0
	}
}

// DeviceCommand returns the on-device command whose first output token
// is this algorithm's hex digest of its path argument.
func (a Algorithm) DeviceCommand() string {
	switch a {
	case MD5:
		return "md5"
	case SHA1:
		return "sha1sum"
	case SHA256:
		return "sha256sum"
	case BLAKE2b:
		return "b2sum -l 256"
	case BLAKE3:
		return "b3sum"
	default:
		return ""
	}
}

// New returns a fresh hasher. Panics on an unknown algorithm; callers
// validate names with ParseAlgorithm first.
func (a Algorithm) New() hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA1:
		return sha1.New()
	case SHA256:
		return sha256.New()
	case BLAKE2b:
		hasher, err := blake2b.New256(nil)
		if err != nil {
			// Only returned for an oversized key; nil never fails.
			panic("binhash: blake2b initialization failed: " + err.Error())
		}
		return hasher
	case BLAKE3:
		return blake3.New()
	default:
		panic(fmt.Sprintf("binhash: unknown algorithm %q", string(a)))
	}
}

// Digest is the lowercase hex encoding of a hash. Equal digests mean
// identical content.
type Digest string

// String returns the hex form.
func (d Digest) String() string {
	return string(d)
}

// Sum digests an in-memory buffer.
func Sum(algorithm Algorithm, data []byte) Digest {
	hasher := algorithm.New()
	hasher.Write(data)
	return Digest(hex.EncodeToString(hasher.Sum(nil)))
}

// HashReader streams r through the hash function.
func HashReader(algorithm Algorithm, r io.Reader) (Digest, error) {
	hasher := algorithm.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return Digest(hex.EncodeToString(hasher.Sum(nil))), nil
}

// HashFile digests the file at path. The file is streamed through the
// hash function in chunks, so memory use is constant regardless of
// file size.
func HashFile(algorithm Algorithm, path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	digest, err := HashReader(algorithm, file)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// ParseDigest validates a hex digest string for algorithm. Upper-case
// input is accepted and normalized.
func ParseDigest(algorithm Algorithm, hexString string) (Digest, error) {
	normalized := strings.ToLower(strings.TrimSpace(hexString))
	decoded, err := hex.DecodeString(normalized)
	if err != nil {
		return "", fmt.Errorf("parsing %s digest: %w", algorithm, err)
	}
	if want := algorithm.Size(); len(decoded) != want {
		return "", fmt.Errorf("%s digest is %d bytes, want %d", algorithm, len(decoded), want)
	}
	return Digest(normalized), nil
}

// ParseDeviceOutput extracts the digest from the output of
// DeviceCommand: the first whitespace-separated token, typically
// followed by the path.
func ParseDeviceOutput(algorithm Algorithm, output string) (Digest, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty %s output", algorithm.DeviceCommand())
	}
	digest, err := ParseDigest(algorithm, fields[0])
	if err != nil {
		return "", fmt.Errorf("%s output %q: %w", algorithm.DeviceCommand(), strings.TrimSpace(output), err)
	}
	return digest, nil
}
