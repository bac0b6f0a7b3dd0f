// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package cache

import "sync"

// writerPreferredLock is a reader-writer lock where a pending writer blocks
// new readers from starting, so a burst of concurrent selector=all command
// reads cannot starve a discovery or callback write (spec.md §5, §9). It
// does not starve already-in-flight readers: a writer still waits for them
// to finish via the underlying sync.RWMutex, it only cuts the queue ahead
// of readers that have not yet started.
type writerPreferredLock struct {
	data      sync.RWMutex
	turnstile sync.Mutex
}

func (l *writerPreferredLock) RLock() {
	l.turnstile.Lock()
	l.turnstile.Unlock()
	l.data.RLock()
}

func (l *writerPreferredLock) RUnlock() {
	l.data.RUnlock()
}

func (l *writerPreferredLock) Lock() {
	l.turnstile.Lock()
	l.data.Lock()
}

func (l *writerPreferredLock) Unlock() {
	l.data.Unlock()
	l.turnstile.Unlock()
}
