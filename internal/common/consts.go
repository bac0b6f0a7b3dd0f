// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package common

const (
	APIVersion = "v1"

	APIPingRoute      = "/api/" + APIVersion + "/ping"
	APIConfigRoute    = "/api/" + APIVersion + "/config"
	APIMetricsRoute   = "/api/" + APIVersion + "/metrics"
	APIDiscoveryRoute = "/api/" + APIVersion + "/discovery"
	APICallbackRoute  = "/api/" + APIVersion + "/callback"
	// APIDeviceRoute's {selector} captures two path segments ("id/<id>",
	// "name/<name>" or "all"), so the var needs an explicit regex — by
	// default gorilla/mux vars stop at the next slash.
	APIDeviceRoute = "/api/" + APIVersion + "/device/{selector:[^/]+(?:/[^/]+)?}/{command}"

	SelectorAll = "all"

	AdminStateLocked   = "LOCKED"
	AdminStateUnlocked = "UNLOCKED"

	OperatingStateEnabled  = "ENABLED"
	OperatingStateDisabled = "DISABLED"

	CallbackTypeDevice  = "DEVICE"
	CallbackTypeProfile = "PROFILE"
	CallbackTypeService = "SERVICE"

	DefaultWorkerPoolSize = 8
)
