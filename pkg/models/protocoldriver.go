// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package models

import (
	"context"

	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"
)

// CommandRequest describes one resource operation the runtime asks the
// driver to perform, resolved from a ResourceOperation/DeviceResource pair
// by internal/handler. Attributes are copied verbatim from the target
// DeviceResource so the driver never has to look the profile back up.
type CommandRequest struct {
	DeviceResourceName string
	Attributes         map[string]string
	Type               ValueType
}

// ProtocolDriver is the capability interface a concrete adapter implements
// and hands to pkg/service.New. It replaces the function-pointer/void*
// context callback pair of the original C SDK (spec.md §9): the driver's
// own state is whatever the implementing type closes over, and the runtime
// never touches it beyond invoking these six methods.
type ProtocolDriver interface {
	// Initialize is called once, after DEVICES_LOADED, with driver-specific
	// name/value pairs taken from the [Driver] config section. Returning an
	// error aborts startup with KindDriverUnstart.
	Initialize(ctx context.Context, lc logger.LoggingClient, driverConfig map[string]string) error

	// HandleReadCommands performs a GET against one device, addressed by
	// its Addressable. reqs is ordered per the matching command's `get`
	// resource operations; the returned slice must be the same length and
	// in the same order.
	HandleReadCommands(ctx context.Context, deviceName string, addr contract.Addressable, reqs []CommandRequest) ([]*CommandValue, error)

	// HandleWriteCommands performs a PUT. params is parallel to reqs.
	HandleWriteCommands(ctx context.Context, deviceName string, addr contract.Addressable, reqs []CommandRequest, params []*CommandValue) error

	// Discover asynchronously probes for new devices, registering any it
	// finds through the AddDeviceCallback handed to it via SetDeviceAdder.
	Discover(ctx context.Context)

	// Stop releases driver-owned resources. force is true on a forced
	// shutdown, where the driver should not block trying to flush anything.
	Stop(force bool) error

	// SetDeviceAdder supplies the callback Discover uses to register
	// devices it finds. The runtime calls this once, before Initialize,
	// once DEVICES_LOADED has made a working callback available — the
	// driver cannot be handed one any earlier since it closes over the
	// device cache and metadata client the lifecycle orchestrator only
	// builds at that point.
	SetDeviceAdder(add AddDeviceCallback)
}

// DiscoveredDevice is what Discover reports back through the
// AddDeviceCallback handed to the driver via SetDeviceAdder.
type DiscoveredDevice struct {
	Name        string
	Profile     string
	Description string
	Labels      []string
	Addressable contract.Addressable
}

// AddDeviceCallback lets a driver register devices it finds during
// Discover without needing a reference back to the runtime's registry or
// metadata client. internal/runtime wires this to the function
// internal/provision.NewAddDeviceCallback builds.
type AddDeviceCallback func(d DiscoveredDevice) (id string, err error)
