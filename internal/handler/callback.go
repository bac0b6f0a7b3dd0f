// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// callbackAlert is the body PUT|POST|DELETE /api/v1/callback carries,
// generalized from the single-purpose models.CallbackAlert the teacher
// file (_examples/jduranf-device-sdk-go/update.go) decoded — that version
// only ever logged the alert; this one drives C2 mutation per spec.md §4.8.
type callbackAlert struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

// CallbackController is the callback handler of spec.md §4.8 (component
// C9): the platform's way of pushing device/profile/service changes into
// this adapter without waiting on the next scheduled refresh.
type CallbackController struct {
	deps Deps
}

func NewCallbackController(deps Deps) *CallbackController {
	return &CallbackController{deps: deps}
}

func (cc *CallbackController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var alert callbackAlert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		cc.deps.Logger.Error("callback: invalid request body", "error", err.Error())
		writeError(w, sdkErrors.Wrap(sdkErrors.KindInvalidArg, "malformed callback body", err))
		return
	}
	cc.deps.Logger.Debug("callback received", "method", r.Method, "type", alert.Type, "id", alert.Id)

	var err error
	switch alert.Type {
	case "DEVICE":
		err = cc.handleDevice(r.Context(), r.Method, alert.Id)
	case "PROFILE":
		err = cc.handleProfile(r.Context(), r.Method, alert.Id)
	case "SERVICE":
		err = cc.handleService(r.Method, alert.Id)
	default:
		err = sdkErrors.New(sdkErrors.KindInvalidArg, "unknown callback type: "+alert.Type)
	}

	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (cc *CallbackController) handleDevice(ctx context.Context, method, id string) error {
	if method == http.MethodDelete {
		return cc.deps.Devices.RemoveByID(id)
	}

	d, err := cc.deps.Metadata.DeviceByID(ctx, id)
	if err != nil {
		return err
	}

	if _, ok := cc.deps.Profiles.GetByName(d.Profile.Name); !ok {
		profile, perr := cc.deps.Metadata.DeviceProfileForName(ctx, d.Profile.Name)
		if perr != nil {
			return perr
		}
		cc.deps.Profiles.Add(profile)
	}

	if _, ok := cc.deps.Devices.GetByID(d.Id); ok {
		return cc.deps.Devices.Update(d.Id, d)
	}
	return cc.deps.Devices.Add(d)
}

func (cc *CallbackController) handleProfile(ctx context.Context, method, id string) error {
	if method != http.MethodDelete {
		profile, err := cc.deps.Metadata.DeviceProfileByID(ctx, id)
		if err != nil {
			return err
		}
		cc.deps.Profiles.Add(profile)
		return nil
	}
	name, ok := cc.deps.Profiles.NameForID(id)
	if !ok {
		return sdkErrors.New(sdkErrors.KindProfileNotFound, "no such profile id: "+id)
	}
	return cc.deps.Profiles.Remove(name, cc.deps.Devices.AnyReferencesProfile)
}

func (cc *CallbackController) handleService(method, _ string) error {
	// SERVICE callbacks (this adapter's own metadata record changed on the
	// platform side) carry nothing this runtime needs to react to locally;
	// acknowledging with 200 is the documented contract.
	return nil
}
