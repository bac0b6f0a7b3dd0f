// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/common"
	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
	"github.com/edgexfoundry/device-sdk-go/internal/transformer"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// CommandController is the command dispatcher of spec.md §4.3 (component
// C4). Its one exported entry point, ServeHTTP, is registered on
// common.APIDeviceRoute.
type CommandController struct {
	deps Deps
}

func NewCommandController(deps Deps) *CommandController {
	return &CommandController{deps: deps}
}

func (c *CommandController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	vars := mux.Vars(r)
	selector := vars["selector"]
	command := vars["command"]

	if selector == common.SelectorAll {
		c.handleAll(w, r, command)
		return
	}

	device, err := c.resolveOne(selector)
	if err != nil {
		writeError(w, err)
		return
	}

	body, execErr := c.Execute(r.Context(), device, command, r)
	if execErr != nil {
		writeError(w, execErr)
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, body)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ExecuteScheduled runs the GET pipeline for selector/command in-process,
// the same steps ServeHTTP takes for a real GET, without a loopback HTTP
// round trip. The scheduler (internal/runtime) calls this directly for
// autoevents targeting a device command, per spec.md §9's "invoke the
// device handler directly ... avoid loopback HTTP".
func (c *CommandController) ExecuteScheduled(ctx context.Context, selector, command string) error {
	device, err := c.resolveOne(selector)
	if err != nil {
		return err
	}
	_, err = c.Execute(ctx, device, command, &http.Request{Method: http.MethodGet})
	return err
}

// resolveOne parses a selector of the shape "id/<id>" or "name/<name>" and
// looks the device up; an unrecognized selector shape or a missing device
// both surface as 404 per spec.md §4.3 step 1.
func (c *CommandController) resolveOne(selector string) (contract.Device, error) {
	var device contract.Device
	var ok bool
	switch {
	case len(selector) > len("id/") && selector[:3] == "id/":
		device, ok = c.deps.Devices.GetByID(selector[3:])
	case len(selector) > len("name/") && selector[:5] == "name/":
		device, ok = c.deps.Devices.GetByName(selector[5:])
	default:
		return contract.Device{}, sdkErrors.New(sdkErrors.KindHTTPNotFound, "unrecognized selector: "+selector)
	}
	if !ok {
		return contract.Device{}, sdkErrors.New(sdkErrors.KindHTTPNotFound, "no such device: "+selector)
	}
	return device, nil
}

// readingEnvelope is the per-device JSON body for GET /device/{selector}/{command}.
type readingEnvelope struct {
	Device   string             `json:"device"`
	Origin   int64              `json:"origin"`
	Readings []contract.Reading `json:"readings"`
}

// Execute runs the full per-device pipeline of spec.md §4.3 steps 2-8 for
// one device and returns the JSON-ready body for a GET (nil for PUT).
func (c *CommandController) Execute(ctx context.Context, device contract.Device, command string, r *http.Request) (*readingEnvelope, error) {
	if device.AdminState == contract.Locked {
		return nil, sdkErrors.New(sdkErrors.KindDeviceLocked, "device locked: "+device.Name)
	}
	if device.OperatingState == contract.Disabled {
		return nil, sdkErrors.New(sdkErrors.KindDeviceDisabled, "device disabled: "+device.Name)
	}

	profile, ok := c.deps.Profiles.GetByName(device.Profile.Name)
	if !ok {
		return nil, sdkErrors.New(sdkErrors.KindProfileNotFound, "profile not found: "+device.Profile.Name)
	}

	resource, ok := findProfileResource(profile, command)
	if !ok {
		return nil, sdkErrors.New(sdkErrors.KindHTTPNotFound, "no such command: "+command)
	}

	isPut := r.Method == http.MethodPut
	ops := resource.Set
	if !isPut {
		ops = resource.Get
	}
	if len(ops) == 0 {
		return nil, sdkErrors.New(sdkErrors.KindHTTPNotFound, "command has no "+methodName(isPut)+" operations: "+command)
	}

	pairs := make([]opResourcePair, 0, len(ops))
	for _, op := range ops {
		dr, ok := findDeviceResource(profile, op.Object)
		if !ok {
			return nil, sdkErrors.New(sdkErrors.KindHTTPNotFound, "device resource not found: "+op.Object)
		}
		if isPut && dr.Properties.Value.ReadWrite == "R" {
			return nil, sdkErrors.New(sdkErrors.KindReadOnlyResource, "resource is read-only: "+dr.Name)
		}
		pairs = append(pairs, opResourcePair{op: op, dr: dr})
	}

	if isPut {
		return nil, c.executePut(ctx, device, pairs, r)
	}
	return c.executeGet(ctx, device, pairs)
}

type opResourcePair struct {
	op contract.ResourceOperation
	dr contract.DeviceResource
}

func findProfileResource(p contract.DeviceProfile, name string) (contract.ProfileResource, bool) {
	for _, res := range p.Resources {
		if res.Name == name {
			return res, true
		}
	}
	return contract.ProfileResource{}, false
}

func findDeviceResource(p contract.DeviceProfile, name string) (contract.DeviceResource, bool) {
	for _, dr := range p.DeviceResources {
		if dr.Name == name {
			return dr, true
		}
	}
	return contract.DeviceResource{}, false
}

func methodName(isPut bool) string {
	if isPut {
		return "set"
	}
	return "get"
}

func (c *CommandController) executeGet(ctx context.Context, device contract.Device, pairs []opResourcePair) (*readingEnvelope, error) {
	reqs := make([]models.CommandRequest, len(pairs))
	for i, p := range pairs {
		vt, err := parseValueType(p.dr.Properties.Value.Type)
		if err != nil {
			return nil, err
		}
		reqs[i] = models.CommandRequest{DeviceResourceName: p.dr.Name, Attributes: p.dr.Attributes, Type: vt}
	}

	results, err := c.deps.Driver.HandleReadCommands(ctx, device.Name, device.Addressable, reqs)
	if err != nil {
		return nil, sdkErrors.Wrap(sdkErrors.KindDriverError, "driver read failed for "+device.Name, err)
	}
	if len(results) != len(pairs) {
		return nil, sdkErrors.New(sdkErrors.KindDriverError, "driver returned wrong number of results")
	}

	readings := make([]contract.Reading, len(results))
	now := time.Now().UnixNano() / int64(time.Millisecond)
	for i, cv := range results {
		pair := pairs[i]
		if c.deps.Config.Device.DataTransform {
			if terr := transformer.TransformReadResult(cv, pair.dr.Properties.Value, pair.op.Mappings); terr != nil {
				if sdkErrors.Is(terr, sdkErrors.KindAssertionFailed) {
					_ = c.deps.Devices.SetOperatingState(device.Id, contract.Disabled)
				}
				return nil, terr
			}
		}
		origin := cv.Origin
		if origin == 0 {
			origin = now
		}
		reading := contract.Reading{
			Name:   cv.DeviceResourceName,
			Value:  cv.String(),
			Origin: origin,
			Device: device.Name,
		}
		if cv.Type == models.Binary {
			reading.MediaType = pair.dr.Properties.Value.MediaType
		}
		readings[i] = reading
	}

	c.deps.Publisher.Publish(device.Name, readings)

	return &readingEnvelope{Device: device.Name, Origin: now, Readings: readings}, nil
}

func (c *CommandController) executePut(ctx context.Context, device contract.Device, pairs []opResourcePair, r *http.Request) error {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindInvalidArg, "malformed request body", err)
	}

	reqs := make([]models.CommandRequest, 0, len(pairs))
	params := make([]*models.CommandValue, 0, len(pairs))
	for _, pair := range pairs {
		raw, ok := body[pair.dr.Name]
		if !ok {
			c.deps.Logger.Warn("PUT body missing value for resource, skipping", "resource", pair.dr.Name)
			continue
		}
		vt, err := parseValueType(pair.dr.Properties.Value.Type)
		if err != nil {
			return err
		}
		cv, err := coerceValue(pair.dr.Name, vt, 0, raw)
		if err != nil {
			return err
		}
		if c.deps.Config.Device.DataTransform {
			if err := transformer.CheckBounds(cv, pair.dr.Properties.Value); err != nil {
				return err
			}
			if err := transformer.TransformWriteParameter(cv, pair.dr.Properties.Value); err != nil {
				return err
			}
		}
		reqs = append(reqs, models.CommandRequest{DeviceResourceName: pair.dr.Name, Attributes: pair.dr.Attributes, Type: vt})
		params = append(params, cv)
	}

	for name := range body {
		if _, known := findDeviceResourceInPairs(pairs, name); !known {
			c.deps.Logger.Warn("PUT body references unknown resource, ignoring", "resource", name)
		}
	}

	if len(reqs) == 0 {
		return sdkErrors.New(sdkErrors.KindInvalidArg, "no recognized resources in request body")
	}

	if err := c.deps.Driver.HandleWriteCommands(ctx, device.Name, device.Addressable, reqs, params); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindDriverError, "driver write failed for "+device.Name, err)
	}
	return nil
}

func findDeviceResourceInPairs(pairs []opResourcePair, name string) (contract.DeviceResource, bool) {
	for _, p := range pairs {
		if p.dr.Name == name {
			return p.dr, true
		}
	}
	return contract.DeviceResource{}, false
}

// handleAll resolves selector=all: every device whose profile defines
// command and whose OperatingState is ENABLED, executed in parallel on the
// worker pool (spec.md §4.3). The HTTP status is 200 if at least one
// device succeeded, else 500; bodies of the successes are concatenated.
func (c *CommandController) handleAll(w http.ResponseWriter, r *http.Request, command string) {
	// r.Body is a single stream; every fan-out goroutine below needs its
	// own copy of it for PUT, since only one reader can ever drain it.
	var bodyBytes []byte
	if r.Method == http.MethodPut {
		var err error
		bodyBytes, err = ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, sdkErrors.Wrap(sdkErrors.KindInvalidArg, "malformed request body", err))
			return
		}
	}

	profiles := c.deps.Profiles.Snapshot()
	var targets []contract.Device
	seen := make(map[string]bool)
	for _, p := range profiles {
		if _, ok := findProfileResource(p, command); !ok {
			continue
		}
		for _, d := range c.deps.Devices.ForProfile(p.Name, true) {
			if !seen[d.Id] {
				seen[d.Id] = true
				targets = append(targets, d)
			}
		}
	}

	type outcome struct {
		body *readingEnvelope
		err  error
	}
	results := make([]outcome, len(targets))
	var wg sync.WaitGroup
	for i, d := range targets {
		i, d := i, d
		wg.Add(1)
		c.deps.Pool.Submit(func() {
			defer wg.Done()
			req := r
			if bodyBytes != nil {
				reqCopy := *r
				reqCopy.Body = ioutil.NopCloser(bytes.NewReader(bodyBytes))
				req = &reqCopy
			}
			body, err := c.Execute(req.Context(), d, command, req)
			results[i] = outcome{body: body, err: err}
		})
	}
	wg.Wait()

	succeeded := 0
	var parts []json.RawMessage
	for _, res := range results {
		if res.err != nil {
			continue
		}
		succeeded++
		if res.body != nil {
			b, _ := json.Marshal(res.body)
			parts = append(parts, b)
		}
	}

	status := http.StatusInternalServerError
	if succeeded > 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(parts)
}
