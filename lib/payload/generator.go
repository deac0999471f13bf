// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
)

// SizeRange describes the half-open interval [Min, Max) in multiples
// of Step above Min.
type SizeRange struct {
	Min  int `yaml:"min" json:"min"`
	Max  int `yaml:"max" json:"max"`
	Step int `yaml:"step" json:"step"`
}

// Validate reports a range that cannot produce a size.
func (r SizeRange) Validate() error {
	switch {
	case r.Step <= 0:
		return fmt.Errorf("size step must be positive, got %d", r.Step)
	case r.Min < 0:
		return fmt.Errorf("minimum size must not be negative, got %d", r.Min)
	case r.Max <= r.Min:
		return fmt.Errorf("size range [%d, %d) is empty", r.Min, r.Max)
	}
	return nil
}

// choices is the number of distinct sizes in the range.
func (r SizeRange) choices() int {
	return (r.Max - r.Min + r.Step - 1) / r.Step
}

// Generator produces sizes and content. It is not safe for concurrent
// use; the runner drives one scenario at a time.
type Generator struct {
	sizes   *rand.Rand
	content io.Reader
}

// NewGenerator seeds a generator. With deterministic false the
// content is cryptographically random and differs between runs even
// under the same seed.
func NewGenerator(seed uint64, deterministic bool) *Generator {
	generator := &Generator{
		sizes:   rand.New(rand.NewPCG(seed, seed)),
		content: cryptorand.Reader,
	}
	if deterministic {
		var key [32]byte
		binary.LittleEndian.PutUint64(key[:], seed)
		generator.content = rand.NewChaCha8(key)
	}
	return generator
}

// Size picks a size uniformly from r. r must be valid.
func (g *Generator) Size(r SizeRange) int {
	return r.Min + r.Step*g.sizes.IntN(r.choices())
}

// Bytes returns n bytes of content.
func (g *Generator) Bytes(n int) ([]byte, error) {
	buffer := make([]byte, n)
	if _, err := io.ReadFull(g.content, buffer); err != nil {
		return nil, fmt.Errorf("generating %d random bytes: %w", n, err)
	}
	return buffer, nil
}
