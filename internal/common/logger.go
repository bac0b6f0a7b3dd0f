// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package common

import (
	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"
)

// NewLoggingClient builds the SDK's one logging client from the [Logging]
// section of Config. Per spec.md §9 there is no global logger: the
// returned handle is threaded explicitly into every subsystem that needs
// to log (internal/runtime does the threading at construction time).
func NewLoggingClient(serviceName string, cfg LoggingInfo) logger.LoggingClient {
	return logger.NewClient(serviceName, cfg.RemoteURL != "", cfg.RemoteURL, cfg.File)
}
