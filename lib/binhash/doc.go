// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes content digests for comparing host-side and
// device-side copies of the same bytes.
//
// A digest is the lowercase hex encoding of a fixed-size hash
// ([Digest]). Two payloads have identical content iff their digests are
// equal; collisions are not handled. The same function is applied to
// host-generated data and to data retrieved from a device, and the
// device computes its side with the tool named by
// [Algorithm.DeviceCommand], whose first output token is directly
// comparable:
//
//   - [MD5] -- the default; devices ship "md5"
//   - [SHA1], [SHA256] -- "sha1sum", "sha256sum"
//   - [BLAKE2b] -- 256-bit BLAKE2b, "b2sum -l 256"
//   - [BLAKE3] -- "b3sum"
//
// The API surface:
//
//   - [Sum] -- digest of an in-memory buffer
//   - [HashFile] / [HashReader] -- streamed digest with constant memory
//   - [ParseDigest] -- validates a hex digest for an algorithm
//   - [ParseDeviceOutput] -- extracts the digest token from device output
//
// This package has no dependencies on other bridgecheck packages.
package binhash
