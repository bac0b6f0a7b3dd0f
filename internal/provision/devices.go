// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package provision loads device profiles and devices from local
// configuration at startup (spec.md §4.7, the REGISTERED→DEVICES_LOADED
// span) and implements the idempotent add-device contract that driver
// discovery uses.
package provision

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/cache"
	"github.com/edgexfoundry/device-sdk-go/internal/clients"
	"github.com/edgexfoundry/device-sdk-go/internal/common"
	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// LoadProfiles scans dir for "*.yaml" device-profile files and uploads any
// whose name is not already present in metadata, caching the result either
// way (spec.md §4.7: "scan configured profile files, upload any not
// present in metadata (idempotent on 409 Conflict)").
func LoadProfiles(ctx context.Context, dir string, profiles *cache.ProfileCache, metadata clients.MetadataClient) error {
	if dir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return sdkErrors.Wrap(sdkErrors.KindBadConfig, "scan profiles directory "+dir, err)
	}

	for _, path := range matches {
		data, err := ioutil.ReadFile(filepath.Clean(path))
		if err != nil {
			return sdkErrors.Wrap(sdkErrors.KindBadConfig, "read device profile "+path, err)
		}
		var p contract.DeviceProfile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return sdkErrors.Wrap(sdkErrors.KindBadConfig, "parse device profile "+path, err)
		}
		if p.Name == "" {
			return sdkErrors.New(sdkErrors.KindBadConfig, "device profile missing name: "+path)
		}

		if existing, ok := profiles.GetByName(p.Name); ok {
			_ = existing
			continue
		}
		if remote, err := metadata.DeviceProfileForName(ctx, p.Name); err == nil {
			profiles.Add(remote)
			continue
		}

		id, err := metadata.UploadDeviceProfile(ctx, p)
		if err != nil {
			return sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "upload device profile "+p.Name, err)
		}
		p.Id = id
		profiles.Add(p)
	}
	return nil
}

// LoadDevices retrieves every device this adapter already owns from
// metadata into devices, then creates any device listed in cfg.DeviceList
// that does not already exist by name (spec.md §4.7:
// "PROFILES_UPLOADED → DEVICES_LOADED").
func LoadDevices(ctx context.Context, serviceName string, cfg []common.DeviceConfig, devices *cache.DeviceCache, metadata clients.MetadataClient) error {
	owned, err := metadata.DevicesForServiceName(ctx, serviceName)
	if err != nil {
		return err
	}
	for _, d := range owned {
		if _, ok := devices.GetByID(d.Id); ok {
			continue
		}
		if err := devices.Add(d); err != nil {
			return err
		}
	}

	for _, dc := range cfg {
		if _, ok := devices.GetByName(dc.Name); ok {
			continue
		}
		addr := contract.Addressable{
			Name:     dc.Addressable.Name,
			Protocol: dc.Addressable.Protocol,
			Method:   dc.Addressable.Method,
			Address:  dc.Addressable.Address,
			Port:     dc.Addressable.Port,
			Path:     dc.Addressable.Path,
		}
		d := contract.Device{
			Name:        dc.Name,
			Profile:     contract.DeviceProfile{Name: dc.Profile},
			Description: dc.Description,
			Labels:      dc.Labels,
			Addressable: addr,
			AdminState:  contract.Unlocked,
			OperatingState: contract.Enabled,
			Service:     contract.DeviceService{Name: serviceName},
		}
		if err := addOrCreateDevice(ctx, d, devices, metadata); err != nil {
			return err
		}
	}
	return nil
}

// NewAddDeviceCallback builds the function Deps.AddOrGetDevice and driver
// Discover calls both use to register a device found at runtime: create it
// in metadata (or fetch the existing record if one with the same name is
// already there) and insert it into devices.
func NewAddDeviceCallback(serviceName string, devices *cache.DeviceCache, metadata clients.MetadataClient) func(models.DiscoveredDevice) (string, error) {
	return func(dd models.DiscoveredDevice) (string, error) {
		if existing, ok := devices.GetByName(dd.Name); ok {
			return existing.Id, nil
		}

		d := contract.Device{
			Name:           dd.Name,
			Profile:        contract.DeviceProfile{Name: dd.Profile},
			Description:    dd.Description,
			Labels:         dd.Labels,
			Addressable:    dd.Addressable,
			AdminState:     contract.Unlocked,
			OperatingState: contract.Enabled,
			Service:        contract.DeviceService{Name: serviceName},
		}
		ctx := context.Background()
		if err := addOrCreateDevice(ctx, d, devices, metadata); err != nil {
			return "", err
		}
		d, _ = devices.GetByName(dd.Name)
		return d.Id, nil
	}
}

// addOrCreateDevice is the shared idempotent-create path: add d to
// metadata (tolerating a 409 by looking the existing record up by name)
// and insert the resulting record into the local cache.
func addOrCreateDevice(ctx context.Context, d contract.Device, devices *cache.DeviceCache, metadata clients.MetadataClient) error {
	if d.Addressable.Name == "" {
		d.Addressable.Name = d.Name + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	}

	id, err := metadata.AddDevice(ctx, d)
	if err != nil {
		return err
	}
	d.Id = id

	if existing, ok := devices.GetByID(d.Id); ok {
		_ = existing
		return nil
	}
	return devices.Add(d)
}
