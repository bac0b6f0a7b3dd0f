// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import (
	"github.com/gorilla/mux"

	"github.com/edgexfoundry/device-sdk-go/internal/common"
)

// NewRouter registers every northbound handler of spec.md §6 on a fresh
// gorilla/mux router. The lifecycle orchestrator calls this once, at the
// DEVICES_LOADED→SERVING transition, and hands the result to its embedded
// HTTP server.
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()

	r.Handle(common.APIPingRoute, NewPingController()).Methods("GET")
	r.Handle(common.APIConfigRoute, NewConfigController(deps)).Methods("GET")
	r.Handle(common.APIMetricsRoute, NewMetricsController()).Methods("GET")
	r.Handle(common.APIDiscoveryRoute, NewDiscoveryController(deps)).Methods("POST")
	r.Handle(common.APICallbackRoute, NewCallbackController(deps)).Methods("PUT", "POST", "DELETE")
	r.Handle(common.APIDeviceRoute, NewCommandController(deps)).Methods("GET", "PUT")

	return r
}
