// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package service is the public facade an adapter's main package imports:
// New wires a ProtocolDriver implementation into the SDK runtime, and
// Start/Stop drive it through spec.md §4.7's lifecycle.
package service

import (
	"context"

	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"

	"github.com/edgexfoundry/device-sdk-go/internal/clients"
	"github.com/edgexfoundry/device-sdk-go/internal/common"
	"github.com/edgexfoundry/device-sdk-go/internal/runtime"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// Service is the handle an adapter main holds for the lifetime of the
// process: construct it with New, call Start once, and Stop on shutdown.
type Service struct {
	rt *runtime.Service
}

// New assembles a Service from a loaded Config, a driver implementation,
// and the platform clients built from that config's [Clients] section. It
// performs no I/O itself; Start does the work spec.md §4.7 describes.
func New(serviceName string, cfg *common.Config, driver models.ProtocolDriver) (*Service, error) {
	lc := common.NewLoggingClient(serviceName, cfg.Logging)

	dataInfo, err := cfg.DataClient()
	if err != nil {
		return nil, err
	}
	metaInfo, err := cfg.MetadataClient()
	if err != nil {
		return nil, err
	}

	data := clients.NewDataClient(dataInfo.Host, dataInfo.Port)
	metadata := clients.NewMetadataClient(metaInfo.Host, metaInfo.Port)
	registry, err := clients.NewRegistryClient(serviceName, cfg.Service.Port, cfg.Registry)
	if err != nil {
		return nil, err
	}

	rt := runtime.New(runtime.Deps{
		ServiceName: serviceName,
		Driver:      driver,
		Config:      cfg,
		Logger:      lc,
		Registry:    registry,
		Metadata:    metadata,
		Data:        data,
	})

	return &Service{rt: rt}, nil
}

// Start runs the full INIT→SCHEDULED startup sequence. On error the
// caller should call Stop(true) before exiting, to unwind any partial
// state the failed attempt left behind.
func (s *Service) Start(ctx context.Context) error {
	return s.rt.Start(ctx)
}

// Stop tears the service down. force=true abandons queued work instead of
// draining it, matching spec.md §4.7's shutdown paragraph.
func (s *Service) Stop(force bool) error {
	return s.rt.Stop(force)
}

// LoggingClientFor is a convenience re-export so adapter mains that need a
// logger before Service exists (e.g. to report a config-load failure)
// don't have to import internal/common directly.
func LoggingClientFor(serviceName string, cfg common.LoggingInfo) logger.LoggingClient {
	return common.NewLoggingClient(serviceName, cfg)
}
