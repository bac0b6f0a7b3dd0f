// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package autoevent

import (
	"sync"
	"time"

	"github.com/edgexfoundry/device-sdk-go/internal/worker"
)

// Task is a periodically-fired job. Repeats==0 means fire forever.
type Task struct {
	Name     string
	Interval time.Duration
	Repeats  int
	Action   worker.Task
}

type scheduledTaskState struct {
	task    Task
	nextDue time.Time
	fired   int
}

// Scheduler is the single scheduler thread of spec.md §4.6: it sleeps until
// the next due task, submits it to the pool, and recomputes the next due
// time as max(now, previous+interval) — drift correction toward the
// configured interval rather than a wall-clock catch-up burst.
type Scheduler struct {
	pool *worker.Pool

	mu      sync.Mutex
	tasks   map[string]*scheduledTaskState
	wake    chan struct{}
	stopped bool
	started bool
	doneCh  chan struct{}
}

func NewScheduler(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		pool:  pool,
		tasks: make(map[string]*scheduledTaskState),
		wake:  make(chan struct{}, 1),
	}
}

// AddTask registers t, due to fire first after t.Interval from now.
// Adding a task with a name already present replaces it.
func (s *Scheduler) AddTask(t Task) {
	s.mu.Lock()
	s.tasks[t.Name] = &scheduledTaskState{task: t, nextDue: time.Now().Add(t.Interval)}
	s.mu.Unlock()
	s.nudge()
}

// RemoveTask cancels a scheduled task by name; a no-op if unknown.
func (s *Scheduler) RemoveTask(name string) {
	s.mu.Lock()
	delete(s.tasks, name)
	s.mu.Unlock()
	s.nudge()
}

func (s *Scheduler) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Start is idempotent: calling it a second time is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

func (s *Scheduler) run() {
	defer close(s.doneCh)
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait := s.nextWait()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
			s.fireDue()
		case <-s.wake:
			continue
		case <-s.doneChIfStopping():
			return
		}
	}
}

// doneChIfStopping returns a channel that is already closed once Stop has
// been requested, letting run's select notice cancellation immediately.
func (s *Scheduler) doneChIfStopping() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return nil
}

func (s *Scheduler) nextWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return time.Hour
	}
	now := time.Now()
	min := time.Hour
	for _, st := range s.tasks {
		d := st.nextDue.Sub(now)
		if d < min {
			min = d
		}
	}
	if min < 0 {
		min = 0
	}
	return min
}

func (s *Scheduler) fireDue() {
	s.mu.Lock()
	now := time.Now()
	var due []*scheduledTaskState
	for name, st := range s.tasks {
		if !st.nextDue.After(now) {
			due = append(due, st)
			st.fired++
			if st.task.Repeats > 0 && st.fired >= st.task.Repeats {
				delete(s.tasks, name)
			} else {
				prev := st.nextDue
				next := prev.Add(st.task.Interval)
				if next.Before(now) {
					next = now
				}
				st.nextDue = next
			}
		}
	}
	pool := s.pool
	s.mu.Unlock()

	for _, st := range due {
		action := st.task.Action
		pool.Submit(action)
	}
}

// Stop cancels the sleeper and prevents further submissions; any submission
// already handed to the pool is allowed to complete (spec.md §4.6).
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	done := s.doneCh
	s.mu.Unlock()

	s.nudge()
	<-done
}
