// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import "net/http"

// ConfigController answers GET /api/v1/config with the effective
// configuration as JSON: the registry's copy when pkg/startup found one
// there, otherwise the local file. The C SDK this was distilled from
// (original_source/src/c/service.c) dumps the same thing for operator
// diagnostics; spec.md calls this handler "trivial and not specified here"
// but a complete implementation still needs it to exist.
type ConfigController struct {
	deps Deps
}

func NewConfigController(deps Deps) *ConfigController {
	return &ConfigController{deps: deps}
}

func (c *ConfigController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.deps.Config)
}
