// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package devicelock keeps two harness processes off the same device.
// Scenarios reuse fixed scratch paths on the device, so concurrent
// runs against one serial would delete each other's files.
//
// Locks are advisory flock(2) locks on one file per serial in a shared
// directory. They are released when the holding process exits, so a
// crashed run never leaves a device locked.
package devicelock

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const suffix = ".bridgecheck.lock"

// DefaultDir is the lock directory when none is configured.
func DefaultDir() string {
	return os.TempDir()
}

// Locker tracks the locks held by this process. It is not safe for
// concurrent use.
type Locker struct {
	dir   string
	locks map[string]*flock.Flock
}

// New returns a Locker that keeps its lock files in dir.
func New(dir string) *Locker {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Locker{
		dir:   dir,
		locks: make(map[string]*flock.Flock),
	}
}

// TryLock acquires the lock for serial without blocking. It returns
// false with a nil error when another process holds it. Locking a
// serial this Locker already holds succeeds.
func (l *Locker) TryLock(serial string) (bool, error) {
	filename := l.Path(serial)
	if _, ok := l.locks[filename]; ok {
		return true, nil
	}

	lock := flock.New(filename)
	ok, err := lock.TryLock()
	if ok {
		l.locks[filename] = lock
	} else {
		_ = lock.Close()
	}
	return ok, err
}

// Unlock releases the lock for serial. Unlocking a serial that is not
// held does nothing.
func (l *Locker) Unlock(serial string) {
	filename := l.Path(serial)
	lock, ok := l.locks[filename]
	if !ok {
		return
	}
	delete(l.locks, filename)
	_ = lock.Close()
}

// UnlockAll releases every lock this Locker holds.
func (l *Locker) UnlockAll() {
	for filename, lock := range l.locks {
		delete(l.locks, filename)
		_ = lock.Close()
	}
}

// Held reports whether this Locker holds the lock for serial.
func (l *Locker) Held(serial string) bool {
	_, ok := l.locks[l.Path(serial)]
	return ok
}

// Path is the lock file for serial.
func (l *Locker) Path(serial string) string {
	return filepath.Join(l.dir, sanitize(serial)+suffix)
}

// sanitize percent-encodes a serial into a file name. The encoding is
// one-to-one, so distinct serials never share a lock file.
// Network-attached devices have serials like "192.168.1.20:5555".
func sanitize(serial string) string {
	return strings.ReplaceAll(url.PathEscape(serial), ":", "%3A")
}
