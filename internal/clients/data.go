// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package clients

import (
	"context"
	"fmt"

	"github.com/edgexfoundry/go-mod-core-contracts/clients"
	"github.com/edgexfoundry/go-mod-core-contracts/clients/types"
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// DataClient is the platform data-service operation the event publisher
// (C5) and the PLATFORM_READY lifecycle step need.
type DataClient interface {
	Ping(ctx context.Context) error
	AddEvent(ctx context.Context, e contract.Event) (string, error)
}

type dataClient struct {
	event clients.EventClient
}

func NewDataClient(host string, port int) DataClient {
	url := fmt.Sprintf("http://%s:%d", host, port)
	params := types.EndpointParams{
		UseRegistry: false,
		Path:        clients.ApiEventRoute,
		Url:         url + clients.ApiEventRoute,
	}
	return &dataClient{event: clients.NewEventClient(params, clients.NewEndpoint())}
}

func (c *dataClient) Ping(ctx context.Context) error {
	if err := c.event.Ping(ctx); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, "data service unreachable", err)
	}
	return nil
}

func (c *dataClient) AddEvent(ctx context.Context, e contract.Event) (string, error) {
	id, err := c.event.Add(ctx, &e)
	if err != nil {
		return "", sdkErrors.Wrap(sdkErrors.KindDataClientFail, "post event for device "+e.Device, err)
	}
	return id, nil
}
