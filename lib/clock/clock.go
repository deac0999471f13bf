// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Since returns the time elapsed on c since start.
func Since(c Clock, start time.Time) time.Duration {
	return c.Now().Sub(start)
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// FakeClock is a Clock that only moves when told to. Safe for
// concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// Fake returns a FakeClock reading start.
func Fake(start time.Time) *FakeClock {
	return &FakeClock{current: start}
}

// Now returns the fake time, then advances it by the automatic step.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.current
	f.current = f.current.Add(f.step)
	return now
}

// Advance moves the clock forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// Set moves the clock to t, which may be in the past.
func (f *FakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = t
}

// AutoAdvance makes every call to Now advance the clock by step after
// returning. Zero disables it.
func (f *FakeClock) AutoAdvance(step time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = step
}
