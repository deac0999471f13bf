// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bridgecheck/bridgecheck/lib/binhash"
)

// Tree is a staged directory of random files laid out the way a sync
// root mirrors the device: Base stands in for the device's root, and
// Dir is Base joined with the device path being mirrored.
type Tree struct {
	Base string
	Dir  string

	// Mirror is the device path Dir corresponds to.
	Mirror string

	// Files is sorted by BaseName.
	Files []*File
}

// RemotePath returns the device path of file after a sync.
func (t *Tree) RemotePath(file *File) string {
	return path.Join(t.Mirror, file.BaseName)
}

// Close removes the whole staged tree, including Base.
func (t *Tree) Close() error {
	return os.RemoveAll(t.Base)
}

// StageTree creates a fresh base directory under parent (the system
// temp directory when empty), creates the mirror of the absolute
// device path mirror inside it, and fills that with count files whose
// sizes are drawn from sizes.
func (g *Generator) StageTree(parent, mirror string, count int, sizes SizeRange, algorithm binhash.Algorithm) (*Tree, error) {
	if !strings.HasPrefix(mirror, "/") {
		return nil, fmt.Errorf("mirror path %q must be absolute", mirror)
	}
	if err := sizes.Validate(); err != nil {
		return nil, err
	}

	base, err := os.MkdirTemp(parent, "bridgecheck-sync-*")
	if err != nil {
		return nil, fmt.Errorf("creating sync base: %w", err)
	}
	tree := &Tree{
		Base:   base,
		Dir:    filepath.Join(base, filepath.FromSlash(mirror)),
		Mirror: mirror,
	}
	if err := os.MkdirAll(tree.Dir, 0o755); err != nil {
		tree.Close()
		return nil, fmt.Errorf("creating sync mirror %s: %w", tree.Dir, err)
	}

	for range count {
		data, err := g.Bytes(g.Size(sizes))
		if err != nil {
			tree.Close()
			return nil, err
		}
		file, err := writeTemp(tree.Dir, "file-*", data, algorithm)
		if err != nil {
			tree.Close()
			return nil, err
		}
		tree.Files = append(tree.Files, file)
	}

	slices.SortFunc(tree.Files, func(a, b *File) int {
		return strings.Compare(a.BaseName, b.BaseName)
	})
	return tree, nil
}
