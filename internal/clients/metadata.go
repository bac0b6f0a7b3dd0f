// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package clients wraps the platform metadata and data REST clients from
// go-mod-core-contracts, and the configuration registry client from
// go-mod-registry, behind the narrow interfaces internal/runtime and
// internal/provision actually call. Both are collaborators spec.md §1/§6
// treats as external; this package is the seam where the SDK owns the
// wiring but not the wire protocol.
package clients

import (
	"context"
	"fmt"

	"github.com/edgexfoundry/go-mod-core-contracts/clients"
	"github.com/edgexfoundry/go-mod-core-contracts/clients/types"
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// MetadataClient is every metadata-service operation the lifecycle
// orchestrator (C8) and callback handler (C9) need, per spec.md §6.
type MetadataClient interface {
	Ping(ctx context.Context) error

	AddressableForName(ctx context.Context, name string) (contract.Addressable, error)
	AddAddressable(ctx context.Context, a contract.Addressable) (string, error)

	DeviceServiceForName(ctx context.Context, name string) (contract.DeviceService, error)
	AddDeviceService(ctx context.Context, ds contract.DeviceService) (string, error)

	DeviceProfileForName(ctx context.Context, name string) (contract.DeviceProfile, error)
	DeviceProfileByID(ctx context.Context, id string) (contract.DeviceProfile, error)
	UploadDeviceProfile(ctx context.Context, p contract.DeviceProfile) (string, error)

	DevicesForServiceName(ctx context.Context, serviceName string) ([]contract.Device, error)
	AddDevice(ctx context.Context, d contract.Device) (string, error)
	DeviceForName(ctx context.Context, name string) (contract.Device, error)
	DeviceByID(ctx context.Context, id string) (contract.Device, error)
	UpdateDevice(ctx context.Context, d contract.Device) error
	DeleteDeviceByID(ctx context.Context, id string) error

	AddSchedule(ctx context.Context, s contract.Schedule) (string, error)
	AddScheduleEvent(ctx context.Context, e contract.ScheduleEvent) (string, error)
	ScheduleEventsForServiceName(ctx context.Context, serviceName string) ([]contract.ScheduleEvent, error)
}

type metadataClient struct {
	addressable   clients.AddressableClient
	deviceService clients.DeviceServiceClient
	deviceProfile clients.DeviceProfileClient
	device        clients.DeviceClient
	schedule      clients.ScheduleClient
	scheduleEvent clients.ScheduleEventClient
}

// NewMetadataClient builds a MetadataClient talking to host:port.
func NewMetadataClient(host string, port int) MetadataClient {
	url := fmt.Sprintf("http://%s:%d", host, port)
	params := types.EndpointParams{UseRegistry: false}

	params.Path = clients.ApiAddressableRoute
	params.Url = url + params.Path
	addressable := clients.NewAddressableClient(params, clients.NewEndpoint())

	params.Path = clients.ApiDeviceServiceRoute
	params.Url = url + params.Path
	deviceService := clients.NewDeviceServiceClient(params, clients.NewEndpoint())

	params.Path = clients.ApiDeviceProfileRoute
	params.Url = url + params.Path
	deviceProfile := clients.NewDeviceProfileClient(params, clients.NewEndpoint())

	params.Path = clients.ApiDeviceRoute
	params.Url = url + params.Path
	device := clients.NewDeviceClient(params, clients.NewEndpoint())

	params.Path = clients.ApiScheduleRoute
	params.Url = url + params.Path
	schedule := clients.NewScheduleClient(params, clients.NewEndpoint())

	params.Path = clients.ApiScheduleEventRoute
	params.Url = url + params.Path
	scheduleEvent := clients.NewScheduleEventClient(params, clients.NewEndpoint())

	return &metadataClient{
		addressable:   addressable,
		deviceService: deviceService,
		deviceProfile: deviceProfile,
		device:        device,
		schedule:      schedule,
		scheduleEvent: scheduleEvent,
	}
}

func (c *metadataClient) Ping(ctx context.Context) error {
	_, err := c.deviceService.DeviceServiceForName(ctx, "__ping__")
	if err != nil && !clients.IsNotFoundErr(err) {
		return sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, "metadata service unreachable", err)
	}
	return nil
}

func (c *metadataClient) AddressableForName(ctx context.Context, name string) (contract.Addressable, error) {
	a, err := c.addressable.AddressableForName(ctx, name)
	if err != nil {
		return contract.Addressable{}, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "get addressable "+name, err)
	}
	return a, nil
}

func (c *metadataClient) AddAddressable(ctx context.Context, a contract.Addressable) (string, error) {
	id, err := c.addressable.Add(ctx, &a)
	if err != nil {
		if clients.IsConflictErr(err) {
			return "", sdkErrors.Wrap(sdkErrors.KindHTTPConflict, "addressable already exists: "+a.Name, err)
		}
		return "", sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "add addressable "+a.Name, err)
	}
	return id, nil
}

func (c *metadataClient) DeviceServiceForName(ctx context.Context, name string) (contract.DeviceService, error) {
	ds, err := c.deviceService.DeviceServiceForName(ctx, name)
	if err != nil {
		return contract.DeviceService{}, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "get device service "+name, err)
	}
	return ds, nil
}

func (c *metadataClient) AddDeviceService(ctx context.Context, ds contract.DeviceService) (string, error) {
	id, err := c.deviceService.Add(ctx, &ds)
	if err != nil {
		return "", sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "add device service "+ds.Name, err)
	}
	return id, nil
}

func (c *metadataClient) DeviceProfileForName(ctx context.Context, name string) (contract.DeviceProfile, error) {
	p, err := c.deviceProfile.DeviceProfileForName(ctx, name)
	if err != nil {
		return contract.DeviceProfile{}, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "get device profile "+name, err)
	}
	return p, nil
}

func (c *metadataClient) DeviceProfileByID(ctx context.Context, id string) (contract.DeviceProfile, error) {
	p, err := c.deviceProfile.DeviceProfile(ctx, id)
	if err != nil {
		return contract.DeviceProfile{}, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "get device profile by id "+id, err)
	}
	return p, nil
}

func (c *metadataClient) UploadDeviceProfile(ctx context.Context, p contract.DeviceProfile) (string, error) {
	id, err := c.deviceProfile.Add(ctx, &p)
	if err != nil {
		if clients.IsConflictErr(err) {
			existing, gerr := c.deviceProfile.DeviceProfileForName(ctx, p.Name)
			if gerr == nil {
				return existing.Id, nil
			}
		}
		return "", sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "upload device profile "+p.Name, err)
	}
	return id, nil
}

func (c *metadataClient) DevicesForServiceName(ctx context.Context, serviceName string) ([]contract.Device, error) {
	devices, err := c.device.DevicesForServiceName(ctx, serviceName)
	if err != nil {
		return nil, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "list devices for service "+serviceName, err)
	}
	return devices, nil
}

func (c *metadataClient) AddDevice(ctx context.Context, d contract.Device) (string, error) {
	id, err := c.device.Add(ctx, &d)
	if err != nil {
		if clients.IsConflictErr(err) {
			existing, gerr := c.device.DeviceForName(ctx, d.Name)
			if gerr == nil {
				return existing.Id, nil
			}
		}
		return "", sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "add device "+d.Name, err)
	}
	return id, nil
}

func (c *metadataClient) DeviceForName(ctx context.Context, name string) (contract.Device, error) {
	d, err := c.device.DeviceForName(ctx, name)
	if err != nil {
		return contract.Device{}, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "get device "+name, err)
	}
	return d, nil
}

func (c *metadataClient) DeviceByID(ctx context.Context, id string) (contract.Device, error) {
	d, err := c.device.Device(ctx, id)
	if err != nil {
		return contract.Device{}, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "get device by id "+id, err)
	}
	return d, nil
}

func (c *metadataClient) UpdateDevice(ctx context.Context, d contract.Device) error {
	if err := c.device.Update(ctx, d); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "update device "+d.Name, err)
	}
	return nil
}

func (c *metadataClient) DeleteDeviceByID(ctx context.Context, id string) error {
	if err := c.device.Delete(ctx, id); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "delete device "+id, err)
	}
	return nil
}

func (c *metadataClient) AddSchedule(ctx context.Context, s contract.Schedule) (string, error) {
	id, err := c.schedule.Add(ctx, &s)
	if err != nil {
		if clients.IsConflictErr(err) {
			return "", sdkErrors.Wrap(sdkErrors.KindHTTPConflict, "schedule already exists: "+s.Name, err)
		}
		return "", sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "add schedule "+s.Name, err)
	}
	return id, nil
}

func (c *metadataClient) AddScheduleEvent(ctx context.Context, e contract.ScheduleEvent) (string, error) {
	id, err := c.scheduleEvent.Add(ctx, &e)
	if err != nil {
		if clients.IsConflictErr(err) {
			return "", sdkErrors.Wrap(sdkErrors.KindHTTPConflict, "schedule event already exists: "+e.Name, err)
		}
		return "", sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "add schedule event "+e.Name, err)
	}
	return id, nil
}

func (c *metadataClient) ScheduleEventsForServiceName(ctx context.Context, serviceName string) ([]contract.ScheduleEvent, error) {
	events, err := c.scheduleEvent.ScheduleEventsForServiceName(ctx, serviceName)
	if err != nil {
		return nil, sdkErrors.Wrap(sdkErrors.KindMetadataClientFail, "list schedule events for "+serviceName, err)
	}
	return events, nil
}
