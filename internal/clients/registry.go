// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package clients

import (
	goRegistry "github.com/edgexfoundry/go-mod-registry/registry"

	"github.com/edgexfoundry/device-sdk-go/internal/common"
	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// RegistryClient is the configuration-registry collaborator of spec.md §6.
// When the caller has no registry host configured, NewRegistryClient
// returns nil and every lifecycle step that would use it is skipped per
// the "Config registry absent" design note (spec.md §9): the service runs
// off its local configuration.toml alone.
type RegistryClient interface {
	IsAlive() bool
	HasConfiguration() (bool, error)
	GetConfiguration(target interface{}) error
	PutConfiguration(source interface{}) error
	Register() error
}

type registryClient struct {
	client goRegistry.Client
}

// NewRegistryClient connects to a configuration registry (e.g. Consul) at
// info.Host:info.Port. It returns (nil, nil) when info.Host is empty.
func NewRegistryClient(serviceKey string, servicePort int, info common.RegistryInfo) (RegistryClient, error) {
	if info.Host == "" {
		return nil, nil
	}
	cfg := goRegistry.Config{
		Host:        info.Host,
		Port:        info.Port,
		Type:        info.Type,
		ServiceKey:  serviceKey,
		ServicePort: servicePort,
	}
	c, err := goRegistry.NewRegistryClient(cfg)
	if err != nil {
		return nil, sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, "connect to configuration registry", err)
	}
	return &registryClient{client: c}, nil
}

func (r *registryClient) IsAlive() bool {
	return r.client.IsAlive()
}

func (r *registryClient) HasConfiguration() (bool, error) {
	ok, err := r.client.HasConfiguration()
	if err != nil {
		return false, sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, "check registry configuration", err)
	}
	return ok, nil
}

func (r *registryClient) GetConfiguration(target interface{}) error {
	if err := r.client.GetConfiguration(target); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, "get registry configuration", err)
	}
	return nil
}

func (r *registryClient) PutConfiguration(source interface{}) error {
	if err := r.client.PutConfigurationToml(source, true); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, "put registry configuration", err)
	}
	return nil
}

func (r *registryClient) Register() error {
	if err := r.client.Register(); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, "register service with registry", err)
	}
	return nil
}
