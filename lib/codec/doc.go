// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR encoding configuration for run reports.
//
// Reports written with a .cbor extension go through [Marshal] or
// [NewEncoder], which use Core Deterministic Encoding: the same report
// always produces the same bytes, so two reports can be compared with
// cmp. Timestamps are encoded as RFC 3339 strings with nanoseconds so
// they survive a round trip exactly.
//
// Struct fields use their json tags as CBOR map keys unless a cbor tag
// is present, so one set of tags serves every report encoding.
package codec
