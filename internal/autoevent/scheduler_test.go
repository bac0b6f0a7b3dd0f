// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package autoevent

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgexfoundry/device-sdk-go/internal/worker"
)

func TestParseISO8601Duration(t *testing.T) {
	cases := map[string]time.Duration{
		"PT2S":    2 * time.Second,
		"PT5M":    5 * time.Minute,
		"PT1H":    time.Hour,
		"PT1H30M": time.Hour + 30*time.Minute,
	}
	for freq, want := range cases {
		got, err := ParseISO8601Duration(freq)
		require.NoError(t, err, freq)
		assert.Equal(t, want, got, freq)
	}
}

func TestParseISO8601DurationRejectsBadInput(t *testing.T) {
	for _, bad := range []string{"", "2S", "PT", "PTXS", "PT0S", "P1D"} {
		_, err := ParseISO8601Duration(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerFiresPeriodically(t *testing.T) {
	pool := worker.New(2)
	pool.Start()
	defer pool.Shutdown(true)

	s := NewScheduler(pool)
	var fired int32
	s.AddTask(Task{
		Name:     "poll",
		Interval: 30 * time.Millisecond,
		Action:   func() { atomic.AddInt32(&fired, 1) },
	})
	s.Start()
	defer s.Stop()

	time.Sleep(160 * time.Millisecond)
	got := atomic.LoadInt32(&fired)
	assert.GreaterOrEqual(t, got, int32(3))
	assert.LessOrEqual(t, got, int32(8))
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	pool := worker.New(1)
	pool.Start()
	defer pool.Shutdown(true)

	s := NewScheduler(pool)
	s.Start()
	s.Start() // must not panic or spawn a second run loop
	s.Stop()
}

func TestSchedulerRespectsRepeatsLimit(t *testing.T) {
	pool := worker.New(1)
	pool.Start()
	defer pool.Shutdown(true)

	s := NewScheduler(pool)
	var fired int32
	s.AddTask(Task{
		Name:     "once-twice",
		Interval: 10 * time.Millisecond,
		Repeats:  2,
		Action:   func() { atomic.AddInt32(&fired, 1) },
	})
	s.Start()
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fired))
}
