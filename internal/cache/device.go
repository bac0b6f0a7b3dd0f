// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package cache holds the runtime's in-memory device and profile registry
// (spec.md §4.1, component C2). Nothing outside this package touches the
// underlying maps directly.
package cache

import (
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// DeviceCache is the concurrency-safe device_by_id / name_to_id pair of
// spec.md §3. The zero value is not usable; use NewDeviceCache.
type DeviceCache struct {
	lock       writerPreferredLock
	devicesByID map[string]contract.Device
	nameToID    map[string]string
}

func NewDeviceCache() *DeviceCache {
	return &DeviceCache{
		devicesByID: make(map[string]contract.Device),
		nameToID:    make(map[string]string),
	}
}

// GetByID performs a shared read.
func (c *DeviceCache) GetByID(id string) (contract.Device, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	d, ok := c.devicesByID[id]
	return d, ok
}

// GetByName performs a shared read; the invariant devices_by_id[id].Name ==
// name is a postcondition of every mutating method below, not something
// this lookup needs to re-check.
func (c *DeviceCache) GetByName(name string) (contract.Device, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	id, ok := c.nameToID[name]
	if !ok {
		return contract.Device{}, false
	}
	d, ok := c.devicesByID[id]
	return d, ok
}

// All returns a snapshot slice of every device, in no particular order.
func (c *DeviceCache) All() []contract.Device {
	c.lock.RLock()
	defer c.lock.RUnlock()
	out := make([]contract.Device, 0, len(c.devicesByID))
	for _, d := range c.devicesByID {
		out = append(out, d)
	}
	return out
}

// Add inserts a new device, rejecting a duplicate id or name.
func (c *DeviceCache) Add(d contract.Device) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, exists := c.devicesByID[d.Id]; exists {
		return errors.New(errors.KindDuplicateDevice, "device id already registered: "+d.Id)
	}
	if _, exists := c.nameToID[d.Name]; exists {
		return errors.New(errors.KindDuplicateDevice, "device name already registered: "+d.Name)
	}
	c.devicesByID[d.Id] = d
	c.nameToID[d.Name] = d.Id
	return nil
}

// Update replaces the stored device for id wholesale with updated,
// preserving the id. If updated.Name differs from the current name, both
// maps move in the same critical section so no reader ever observes a
// device reachable by neither its old nor its new name.
func (c *DeviceCache) Update(id string, updated contract.Device) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	existing, ok := c.devicesByID[id]
	if !ok {
		return errors.New(errors.KindHTTPNotFound, "no such device id: "+id)
	}
	updated.Id = id
	if updated.Name != existing.Name {
		if _, taken := c.nameToID[updated.Name]; taken {
			return errors.New(errors.KindDuplicateDevice, "device name already registered: "+updated.Name)
		}
		delete(c.nameToID, existing.Name)
		c.nameToID[updated.Name] = id
	}
	c.devicesByID[id] = updated
	return nil
}

// SetOperatingState is a narrow Update used by the transform engine to
// disable a device on assertion failure without a full read-modify-write
// from the caller.
func (c *DeviceCache) SetOperatingState(id string, state contract.OperatingState) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	d, ok := c.devicesByID[id]
	if !ok {
		return errors.New(errors.KindHTTPNotFound, "no such device id: "+id)
	}
	d.OperatingState = state
	c.devicesByID[id] = d
	return nil
}

// RemoveByID deletes a device from both maps.
func (c *DeviceCache) RemoveByID(id string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	d, ok := c.devicesByID[id]
	if !ok {
		return errors.New(errors.KindHTTPNotFound, "no such device id: "+id)
	}
	delete(c.devicesByID, id)
	delete(c.nameToID, d.Name)
	return nil
}

// RemoveByName deletes a device from both maps by name.
func (c *DeviceCache) RemoveByName(name string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	id, ok := c.nameToID[name]
	if !ok {
		return errors.New(errors.KindHTTPNotFound, "no such device name: "+name)
	}
	delete(c.devicesByID, id)
	delete(c.nameToID, name)
	return nil
}

// ForProfile returns every device whose Profile.Name matches profileName,
// only the ENABLED ones when enabledOnly is true; the command dispatcher
// uses it to resolve selector=all commands (spec.md §4.3). The
// profile-deletion check uses AnyReferencesProfile instead.
func (c *DeviceCache) ForProfile(profileName string, enabledOnly bool) []contract.Device {
	c.lock.RLock()
	defer c.lock.RUnlock()
	var out []contract.Device
	for _, d := range c.devicesByID {
		if d.Profile.Name != profileName {
			continue
		}
		if enabledOnly && d.OperatingState != contract.Enabled {
			continue
		}
		out = append(out, d)
	}
	return out
}

// AnyReferencesProfile reports whether at least one device (regardless of
// operating state) references profileName.
func (c *DeviceCache) AnyReferencesProfile(profileName string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	for _, d := range c.devicesByID {
		if d.Profile.Name == profileName {
			return true
		}
	}
	return false
}
