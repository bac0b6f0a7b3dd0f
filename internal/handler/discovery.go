// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import "net/http"

// DiscoveryController handles POST /api/v1/discovery: it triggers the
// driver's asynchronous Discover and returns immediately (spec.md §6).
type DiscoveryController struct {
	deps Deps
}

func NewDiscoveryController(deps Deps) *DiscoveryController {
	return &DiscoveryController{deps: deps}
}

func (d *DiscoveryController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	d.deps.Pool.Submit(func() {
		d.deps.Driver.Discover(ctx)
	})
	w.WriteHeader(http.StatusOK)
}
