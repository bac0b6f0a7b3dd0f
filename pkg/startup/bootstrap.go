// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package startup is the entry point an adapter's main function calls: it
// resolves configuration (the registry's copy when present, otherwise the
// local file, which is then uploaded to the registry if one is configured),
// builds the Service, runs it, and blocks until a signal
// or fatal error asks it to stop.
package startup

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgexfoundry/device-sdk-go/internal/clients"
	"github.com/edgexfoundry/device-sdk-go/internal/common"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
	"github.com/edgexfoundry/device-sdk-go/pkg/service"
)

// Bootstrap resolves configuration for serviceName from configDir, builds
// the runtime around driver, and runs it until SIGINT/SIGTERM. It returns
// only on a startup failure or a clean shutdown.
func Bootstrap(serviceName, configDir, configFile string, driver models.ProtocolDriver) error {
	cfg, err := resolveConfig(serviceName, configDir, configFile)
	if err != nil {
		return err
	}

	svc, err := service.New(serviceName, cfg, driver)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		_ = svc.Stop(true)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	return svc.Stop(false)
}

// resolveConfig implements spec.md §4.7's INIT→CONFIG_LOADED transition.
// The local file is always read first, since it names the registry. If
// Registry.Host is empty the local configuration is used; otherwise the
// registry's configuration is used when it has one, and when it has none
// the local configuration is uploaded to it and used.
func resolveConfig(serviceName, configDir, configFile string) (*common.Config, error) {
	path := configDir + string(os.PathSeparator) + configFile
	local, err := common.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	if local.Registry.Host == "" {
		return local, nil
	}

	reg, err := clients.NewRegistryClient(serviceName, local.Service.Port, local.Registry)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return local, nil
	}

	has, err := reg.HasConfiguration()
	if err != nil {
		return nil, err
	}
	if has {
		remote := new(common.Config)
		if err := reg.GetConfiguration(remote); err != nil {
			return nil, err
		}
		return remote, nil
	}

	if err := reg.PutConfiguration(local); err != nil {
		return nil, err
	}
	return local, nil
}
