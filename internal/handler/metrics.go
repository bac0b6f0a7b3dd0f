// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import (
	"net/http"
	"runtime"
)

// metricsBody reports heap usage, goroutine count and GC count taken from
// runtime.ReadMemStats and runtime.NumGoroutine. Process CPU time is not
// reported.
type metricsBody struct {
	AllocBytes      uint64 `json:"allocBytes"`
	TotalAllocBytes uint64 `json:"totalAllocBytes"`
	SysBytes        uint64 `json:"sysBytes"`
	NumGoroutine    int    `json:"numGoroutine"`
	NumGC           uint32 `json:"numGC"`
}

// MetricsController answers GET /api/v1/metrics.
type MetricsController struct{}

func NewMetricsController() *MetricsController { return &MetricsController{} }

func (m *MetricsController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	writeJSON(w, http.StatusOK, metricsBody{
		AllocBytes:      ms.Alloc,
		TotalAllocBytes: ms.TotalAlloc,
		SysBytes:        ms.Sys,
		NumGoroutine:    runtime.NumGoroutine(),
		NumGC:           ms.NumGC,
	})
}
