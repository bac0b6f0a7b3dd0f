// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package provision

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/cache"
	"github.com/edgexfoundry/device-sdk-go/internal/common"
	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// fakeMetadata is a minimal clients.MetadataClient fake driven entirely by
// in-memory maps, standing in for the HTTP-backed client so provision's
// upload/create logic can be exercised without a platform.
type fakeMetadata struct {
	profilesByName map[string]contract.DeviceProfile
	devicesByName  map[string]contract.Device
	owned          []contract.Device
	nextID         int
	uploadErr      error
	addErr         error
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{
		profilesByName: map[string]contract.DeviceProfile{},
		devicesByName:  map[string]contract.Device{},
	}
}

func (f *fakeMetadata) Ping(ctx context.Context) error { return nil }
func (f *fakeMetadata) AddressableForName(ctx context.Context, name string) (contract.Addressable, error) {
	return contract.Addressable{}, nil
}
func (f *fakeMetadata) AddAddressable(ctx context.Context, a contract.Addressable) (string, error) {
	return "", nil
}
func (f *fakeMetadata) DeviceServiceForName(ctx context.Context, name string) (contract.DeviceService, error) {
	return contract.DeviceService{}, sdkErrors.New(sdkErrors.KindHTTPNotFound, "no service")
}
func (f *fakeMetadata) AddDeviceService(ctx context.Context, ds contract.DeviceService) (string, error) {
	return "svc-1", nil
}
func (f *fakeMetadata) DeviceProfileForName(ctx context.Context, name string) (contract.DeviceProfile, error) {
	p, ok := f.profilesByName[name]
	if !ok {
		return contract.DeviceProfile{}, sdkErrors.New(sdkErrors.KindProfileNotFound, "no such profile: "+name)
	}
	return p, nil
}
func (f *fakeMetadata) DeviceProfileByID(ctx context.Context, id string) (contract.DeviceProfile, error) {
	for _, p := range f.profilesByName {
		if p.Id == id {
			return p, nil
		}
	}
	return contract.DeviceProfile{}, sdkErrors.New(sdkErrors.KindProfileNotFound, "no such profile id: "+id)
}
func (f *fakeMetadata) UploadDeviceProfile(ctx context.Context, p contract.DeviceProfile) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.nextID++
	id := itoa(f.nextID)
	p.Id = id
	f.profilesByName[p.Name] = p
	return id, nil
}
func (f *fakeMetadata) DevicesForServiceName(ctx context.Context, serviceName string) ([]contract.Device, error) {
	return f.owned, nil
}
func (f *fakeMetadata) AddDevice(ctx context.Context, d contract.Device) (string, error) {
	if f.addErr != nil {
		return "", f.addErr
	}
	if existing, ok := f.devicesByName[d.Name]; ok {
		return existing.Id, nil
	}
	f.nextID++
	d.Id = itoa(f.nextID)
	f.devicesByName[d.Name] = d
	return d.Id, nil
}
func (f *fakeMetadata) DeviceForName(ctx context.Context, name string) (contract.Device, error) {
	d, ok := f.devicesByName[name]
	if !ok {
		return contract.Device{}, sdkErrors.New(sdkErrors.KindHTTPNotFound, "no such device: "+name)
	}
	return d, nil
}
func (f *fakeMetadata) DeviceByID(ctx context.Context, id string) (contract.Device, error) {
	for _, d := range f.devicesByName {
		if d.Id == id {
			return d, nil
		}
	}
	return contract.Device{}, sdkErrors.New(sdkErrors.KindHTTPNotFound, "no such device id: "+id)
}
func (f *fakeMetadata) UpdateDevice(ctx context.Context, d contract.Device) error { return nil }
func (f *fakeMetadata) DeleteDeviceByID(ctx context.Context, id string) error     { return nil }
func (f *fakeMetadata) AddSchedule(ctx context.Context, s contract.Schedule) (string, error) {
	return "", nil
}
func (f *fakeMetadata) AddScheduleEvent(ctx context.Context, e contract.ScheduleEvent) (string, error) {
	return "", nil
}
func (f *fakeMetadata) ScheduleEventsForServiceName(ctx context.Context, serviceName string) ([]contract.ScheduleEvent, error) {
	return nil, nil
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return string(buf)
}

func writeProfileFile(t *testing.T, dir, name, profileName string) {
	t.Helper()
	content := "name: " + profileName + "\ndescription: test profile\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadProfilesUploadsMissing(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "thermostat.yaml", "thermostat")

	meta := newFakeMetadata()
	profiles := cache.NewProfileCache()

	require.NoError(t, LoadProfiles(context.Background(), dir, profiles, meta))

	p, ok := profiles.GetByName("thermostat")
	require.True(t, ok)
	assert.NotEmpty(t, p.Id)
	assert.Len(t, meta.profilesByName, 1)
}

func TestLoadProfilesSkipsAlreadyCached(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "thermostat.yaml", "thermostat")

	meta := newFakeMetadata()
	profiles := cache.NewProfileCache()
	profiles.Add(contract.DeviceProfile{Id: "existing-1", Name: "thermostat"})

	require.NoError(t, LoadProfiles(context.Background(), dir, profiles, meta))

	// Still cached under the pre-existing id; no upload call should have
	// produced a new remote record for it.
	p, ok := profiles.GetByName("thermostat")
	require.True(t, ok)
	assert.Equal(t, "existing-1", p.Id)
	assert.Empty(t, meta.profilesByName)
}

func TestLoadProfilesSkipsAlreadyRemote(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "thermostat.yaml", "thermostat")

	meta := newFakeMetadata()
	meta.profilesByName["thermostat"] = contract.DeviceProfile{Id: "remote-1", Name: "thermostat"}
	profiles := cache.NewProfileCache()

	require.NoError(t, LoadProfiles(context.Background(), dir, profiles, meta))

	p, ok := profiles.GetByName("thermostat")
	require.True(t, ok)
	assert.Equal(t, "remote-1", p.Id)
}

func TestLoadProfilesEmptyDirIsNoop(t *testing.T) {
	meta := newFakeMetadata()
	profiles := cache.NewProfileCache()
	require.NoError(t, LoadProfiles(context.Background(), "", profiles, meta))
	assert.Empty(t, meta.profilesByName)
}

func TestLoadDevicesPullsOwnedAndCreatesConfigured(t *testing.T) {
	meta := newFakeMetadata()
	meta.owned = []contract.Device{
		{Id: "dev-owned", Name: "already-there", Profile: contract.DeviceProfile{Name: "thermostat"}},
	}
	devices := cache.NewDeviceCache()

	cfg := []common.DeviceConfig{
		{Name: "new-device", Profile: "thermostat", Addressable: common.AddressableConfig{
			Name: "new-device-addr", Protocol: "TCP", Address: "10.0.0.5", Port: 502,
		}},
	}

	require.NoError(t, LoadDevices(context.Background(), "device-modbus", cfg, devices, meta))

	_, ok := devices.GetByID("dev-owned")
	assert.True(t, ok)

	configured, ok := devices.GetByName("new-device")
	require.True(t, ok)
	assert.Equal(t, "thermostat", configured.Profile.Name)
	assert.Equal(t, "new-device-addr", configured.Addressable.Name)
}

func TestLoadDevicesSkipsAlreadyConfigured(t *testing.T) {
	meta := newFakeMetadata()
	devices := cache.NewDeviceCache()
	require.NoError(t, devices.Add(contract.Device{Id: "dev-1", Name: "pre-existing"}))

	cfg := []common.DeviceConfig{{Name: "pre-existing", Profile: "thermostat"}}
	require.NoError(t, LoadDevices(context.Background(), "device-modbus", cfg, devices, meta))

	assert.Empty(t, meta.devicesByName)
}

func TestNewAddDeviceCallbackIsIdempotentByName(t *testing.T) {
	meta := newFakeMetadata()
	devices := cache.NewDeviceCache()
	add := NewAddDeviceCallback("device-modbus", devices, meta)

	id1, err := add(models.DiscoveredDevice{Name: "found-1", Profile: "thermostat"})
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	id2, err := add(models.DiscoveredDevice{Name: "found-1", Profile: "thermostat"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	assert.Len(t, meta.devicesByName, 1)
}

func TestAddOrCreateDeviceSynthesizesAddressableName(t *testing.T) {
	meta := newFakeMetadata()
	devices := cache.NewDeviceCache()

	d := contract.Device{Name: "no-addr-name"}
	require.NoError(t, addOrCreateDevice(context.Background(), d, devices, meta))

	got, ok := devices.GetByName("no-addr-name")
	require.True(t, ok)
	assert.NotEmpty(t, got.Addressable.Name)
}
