// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllSubmittedTasks(t *testing.T) {
	p := New(4)
	p.Start()

	var count int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func() {
			atomic.AddInt32(&count, 1)
			wg.Done()
		})
	}
	wg.Wait()
	assert.EqualValues(t, 100, count)

	p.Shutdown(false)
}

func TestPoolPreservesFIFOOrderPerSubmitter(t *testing.T) {
	p := New(1) // single worker makes order observable
	p.Start()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		p.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()
	p.Shutdown(false)

	for i := 0; i < 20; i++ {
		assert.Equal(t, i, order[i])
	}
}

func TestPoolGracefulShutdownDrainsQueue(t *testing.T) {
	p := New(2)
	p.Start()

	var count int32
	for i := 0; i < 50; i++ {
		p.Submit(func() {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&count, 1)
		})
	}
	p.Shutdown(false)
	assert.EqualValues(t, 50, count)
}

func TestPoolSubmitAfterShutdownIsNoop(t *testing.T) {
	p := New(2)
	p.Start()
	p.Shutdown(false)

	assert.NotPanics(t, func() {
		p.Submit(func() {})
	})
}
