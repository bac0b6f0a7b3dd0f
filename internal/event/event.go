// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package event implements the event publisher of spec.md §4.4 (component
// C5): it assembles the event payload a successful GET produced and hands
// the actual HTTP post to the worker pool so the originating request can
// return without waiting on it.
package event

import (
	"context"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/clients"
	"github.com/edgexfoundry/device-sdk-go/internal/worker"
)

const postTimeout = 10 * time.Second

// Publisher enqueues post_event tasks (spec.md §4.4). It has no local
// spooling: a post failure is logged and dropped, matching the
// at-most-once delivery spec.md calls for.
type Publisher struct {
	pool *worker.Pool
	data clients.DataClient
	lc   logger.LoggingClient
}

func NewPublisher(pool *worker.Pool, data clients.DataClient, lc logger.LoggingClient) *Publisher {
	return &Publisher{pool: pool, data: data, lc: lc}
}

// Publish builds one event from deviceName and readings and submits its
// post asynchronously. readings must already be in resource-operation
// index order (spec.md §5 Ordering); this function does not reorder them.
func (p *Publisher) Publish(deviceName string, readings []contract.Reading) {
	evt := contract.Event{
		Device:   deviceName,
		Origin:   time.Now().UnixNano() / int64(time.Millisecond),
		Readings: readings,
	}

	p.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
		defer cancel()
		if _, err := p.data.AddEvent(ctx, evt); err != nil {
			p.lc.Error("failed to post event", "device", deviceName, "error", err.Error())
		}
	})
}
