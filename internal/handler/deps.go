// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package handler holds every northbound HTTP API handler of spec.md §6:
// the command dispatcher (C4), the callback handler (C9), discovery, ping,
// config, and metrics. Dependencies are injected through Deps rather than
// read off package-level globals, per spec.md §9's logger-handle note
// generalized to the rest of the runtime's collaborators.
package handler

import (
	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"

	"github.com/edgexfoundry/device-sdk-go/internal/cache"
	"github.com/edgexfoundry/device-sdk-go/internal/clients"
	"github.com/edgexfoundry/device-sdk-go/internal/common"
	"github.com/edgexfoundry/device-sdk-go/internal/event"
	"github.com/edgexfoundry/device-sdk-go/internal/worker"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// Deps bundles everything the handlers need from the rest of the runtime.
type Deps struct {
	Devices   *cache.DeviceCache
	Profiles  *cache.ProfileCache
	Driver    models.ProtocolDriver
	Publisher *event.Publisher
	Pool      *worker.Pool
	Logger    logger.LoggingClient
	Config    *common.Config
	Metadata  clients.MetadataClient
	ServiceName string

	// AddOrGetDevice is the same function the driver receives through
	// SetDeviceAdder for discovery: it inserts a device into the registry,
	// or returns the existing id when one with the same name already exists
	// (spec.md's idempotent add_device contract, carried from
	// original_source/devsdk.h). No handler in this package calls it; the
	// DEVICE callback fetches the device from metadata by id instead.
	AddOrGetDevice func(d models.DiscoveredDevice) (string, error)
}
