// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package cache

import (
	"sync"

	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// ProfileCache is profiles_by_name (spec.md §3). It has its own mutex,
// independent of DeviceCache's, because profile lookups sit on the same hot
// path as every command dispatch but change far less often than devices do.
type ProfileCache struct {
	lock           sync.RWMutex
	profilesByName map[string]contract.DeviceProfile
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{profilesByName: make(map[string]contract.DeviceProfile)}
}

func (c *ProfileCache) GetByName(name string) (contract.DeviceProfile, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	p, ok := c.profilesByName[name]
	return p, ok
}

// NameForID resolves a profile's platform id to its cache key; callback
// bodies carry the metadata id rather than the name (spec.md §4.8).
func (c *ProfileCache) NameForID(id string) (string, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	for name, p := range c.profilesByName {
		if p.Id == id {
			return name, true
		}
	}
	return "", false
}

// Add inserts or replaces a profile by name; profile uploads are idempotent
// so re-adding one already present is not an error.
func (c *ProfileCache) Add(p contract.DeviceProfile) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.profilesByName[p.Name] = p
}

// Remove deletes the profile name, unless referenced is non-nil and reports the
// profile still has live devices, in which case removal is refused
// (spec.md §3, §4.8: DELETE PROFILE returns 409 while devices reference it).
func (c *ProfileCache) Remove(name string, referenced func(name string) bool) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.profilesByName[name]; !ok {
		return errors.New(errors.KindProfileNotFound, "no such profile: "+name)
	}
	if referenced != nil && referenced(name) {
		return errors.New(errors.KindHTTPConflict, "profile still referenced by a device: "+name)
	}
	delete(c.profilesByName, name)
	return nil
}

// Snapshot returns deep-copied profiles: contract.DeviceProfile embeds
// slices (DeviceResources, Resources, Commands) that callers must not be
// able to mutate through the cache's backing map.
func (c *ProfileCache) Snapshot() []contract.DeviceProfile {
	c.lock.RLock()
	defer c.lock.RUnlock()
	out := make([]contract.DeviceProfile, 0, len(c.profilesByName))
	for _, p := range c.profilesByName {
		out = append(out, deepCopyProfile(p))
	}
	return out
}

func deepCopyProfile(p contract.DeviceProfile) contract.DeviceProfile {
	cp := p
	cp.Labels = append([]string(nil), p.Labels...)
	cp.DeviceResources = append([]contract.DeviceResource(nil), p.DeviceResources...)
	cp.Resources = append([]contract.ProfileResource(nil), p.Resources...)
	cp.Commands = append([]string(nil), p.Commands...)
	for i, r := range cp.Resources {
		cp.Resources[i].Get = append([]contract.ResourceOperation(nil), r.Get...)
		cp.Resources[i].Set = append([]contract.ResourceOperation(nil), r.Set...)
	}
	return cp
}
