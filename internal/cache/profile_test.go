// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package cache

import (
	"testing"

	contract "github.com/edgexfoundry/go-mod-core-contracts/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCacheAddAndGet(t *testing.T) {
	c := NewProfileCache()
	p := contract.DeviceProfile{}
	p.Name = "thermostat"
	p.Labels = []string{"hvac"}
	c.Add(p)

	got, ok := c.GetByName("thermostat")
	require.True(t, ok)
	assert.Equal(t, "thermostat", got.Name)
}

func TestProfileCacheRemoveForbiddenWhileReferenced(t *testing.T) {
	c := NewProfileCache()
	p := contract.DeviceProfile{}
	p.Name = "thermostat"
	c.Add(p)

	err := c.Remove("thermostat", func(string) bool { return true })
	assert.Error(t, err)
	_, ok := c.GetByName("thermostat")
	assert.True(t, ok, "profile must remain when referenced")

	err = c.Remove("thermostat", func(string) bool { return false })
	assert.NoError(t, err)
	_, ok = c.GetByName("thermostat")
	assert.False(t, ok)
}

func TestProfileCacheSnapshotIsDeepCopy(t *testing.T) {
	c := NewProfileCache()
	p := contract.DeviceProfile{}
	p.Name = "thermostat"
	p.Labels = []string{"hvac"}
	c.Add(p)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Labels[0] = "mutated"

	got, _ := c.GetByName("thermostat")
	assert.Equal(t, "hvac", got.Labels[0])
}
