// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import (
	"encoding/json"
	"net/http"

	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// statusFor maps an SdkError's Kind onto the HTTP status table of
// spec.md §6. Errors that are not (or do not wrap) an SdkError are a bare
// 500, since they represent a bug rather than a recognized failure mode.
func statusFor(err error) int {
	kind, ok := sdkErrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case sdkErrors.KindHTTPNotFound, sdkErrors.KindProfileNotFound:
		return http.StatusNotFound
	case sdkErrors.KindDeviceLocked, sdkErrors.KindDeviceDisabled:
		return http.StatusLocked
	case sdkErrors.KindInvalidArg, sdkErrors.KindBadConfig, sdkErrors.KindAssertionFailed:
		return http.StatusBadRequest
	case sdkErrors.KindHTTPConflict, sdkErrors.KindDuplicateDevice:
		return http.StatusConflict
	case sdkErrors.KindDriverError:
		return http.StatusBadGateway
	case sdkErrors.KindReadOnlyResource:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
