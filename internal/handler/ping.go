// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import "net/http"

// PingController answers GET /api/v1/ping with a bare liveness response.
type PingController struct{}

func NewPingController() *PingController { return &PingController{} }

func (p *PingController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"value": "pong"})
}
