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
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/cache"
	"github.com/edgexfoundry/device-sdk-go/internal/clients"
	"github.com/edgexfoundry/device-sdk-go/internal/common"
	"github.com/edgexfoundry/device-sdk-go/internal/event"
	"github.com/edgexfoundry/device-sdk-go/internal/worker"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// fakeDriver is an in-memory models.ProtocolDriver whose read/write
// behavior a test configures directly, standing in for a real southbound
// protocol the way command_test.go needs to exercise the dispatcher alone.
type fakeDriver struct {
	readResults []*models.CommandValue
	readErr     error
	wroteReqs   []models.CommandRequest
	wroteParams []*models.CommandValue
	writeErr    error
}

func (f *fakeDriver) Initialize(ctx context.Context, lc logger.LoggingClient, cfg map[string]string) error {
	return nil
}
func (f *fakeDriver) HandleReadCommands(ctx context.Context, deviceName string, addr contract.Addressable, reqs []models.CommandRequest) ([]*models.CommandValue, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.readResults, nil
}
func (f *fakeDriver) HandleWriteCommands(ctx context.Context, deviceName string, addr contract.Addressable, reqs []models.CommandRequest, params []*models.CommandValue) error {
	f.wroteReqs = reqs
	f.wroteParams = params
	return f.writeErr
}
func (f *fakeDriver) Discover(ctx context.Context)           {}
func (f *fakeDriver) Stop(force bool) error                  { return nil }
func (f *fakeDriver) SetDeviceAdder(add models.AddDeviceCallback) {}

type fakeDataClient struct {
	events []contract.Event
}

func (f *fakeDataClient) Ping(ctx context.Context) error { return nil }
func (f *fakeDataClient) AddEvent(ctx context.Context, e contract.Event) (string, error) {
	f.events = append(f.events, e)
	return "evt-1", nil
}

func tempProfile() contract.DeviceProfile {
	return contract.DeviceProfile{
		Name: "thermostat",
		DeviceResources: []contract.DeviceResource{
			{Name: "temperature", Attributes: map[string]string{"reg": "1"},
				Properties: contract.ProfileProperty{Value: contract.PropertyValue{Type: "Float64", ReadWrite: "R"}}},
			{Name: "setpoint", Attributes: map[string]string{"reg": "2"},
				Properties: contract.ProfileProperty{Value: contract.PropertyValue{Type: "Float64", ReadWrite: "RW"}}},
		},
		Resources: []contract.ProfileResource{
			{
				Name: "temperature",
				Get:  []contract.ResourceOperation{{Object: "temperature"}},
				Set:  []contract.ResourceOperation{{Object: "temperature"}},
			},
			{
				Name: "setpoint",
				Get:  []contract.ResourceOperation{{Object: "setpoint"}},
				Set:  []contract.ResourceOperation{{Object: "setpoint"}},
			},
		},
	}
}

func testDeps(t *testing.T, driver *fakeDriver, data *fakeDataClient) (Deps, *cache.DeviceCache) {
	devices := cache.NewDeviceCache()
	profiles := cache.NewProfileCache()
	profiles.Add(tempProfile())

	d := contract.Device{Id: "dev-1", Name: "therm1", Profile: contract.DeviceProfile{Name: "thermostat"},
		AdminState: contract.Unlocked, OperatingState: contract.Enabled}
	require.NoError(t, devices.Add(d))

	pool := worker.New(2)
	pool.Start()
	t.Cleanup(func() { pool.Shutdown(false) })

	var dc clients.DataClient = data
	lc := common.NewLoggingClient("command-test", common.LoggingInfo{})
	pub := event.NewPublisher(pool, dc, lc)

	deps := Deps{
		Devices:   devices,
		Profiles:  profiles,
		Driver:    driver,
		Publisher: pub,
		Pool:      pool,
		Logger:    lc,
		Config:    &common.Config{Device: common.DeviceInfo{DataTransform: false}},
	}
	return deps, devices
}

func TestCommandControllerGetReturnsReadings(t *testing.T) {
	driver := &fakeDriver{readResults: []*models.CommandValue{models.NewFloat64Value("temperature", 0, 21.5)}}
	deps, _ := testDeps(t, driver, &fakeDataClient{})
	ctrl := NewCommandController(deps)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/device/id/dev-1/temperature", nil)
	r = mux.SetURLVars(r, map[string]string{"selector": "id/dev-1", "command": "temperature"})
	w := httptest.NewRecorder()

	ctrl.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	var body readingEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Readings, 1)
	assert.Equal(t, "21.5", body.Readings[0].Value)
}

func TestCommandControllerLockedDeviceRejected(t *testing.T) {
	driver := &fakeDriver{}
	deps, devices := testDeps(t, driver, &fakeDataClient{})
	d, _ := devices.GetByID("dev-1")
	d.AdminState = contract.Locked
	require.NoError(t, devices.Update("dev-1", d))

	ctrl := NewCommandController(deps)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/device/id/dev-1/temperature", nil)
	r = mux.SetURLVars(r, map[string]string{"selector": "id/dev-1", "command": "temperature"})
	w := httptest.NewRecorder()

	ctrl.ServeHTTP(w, r)
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestCommandControllerPutReadOnlyResourceRejected(t *testing.T) {
	driver := &fakeDriver{}
	deps, _ := testDeps(t, driver, &fakeDataClient{})
	ctrl := NewCommandController(deps)

	body := `{"temperature":"10"}`
	r := httptest.NewRequest(http.MethodPut, "/api/v1/device/id/dev-1/temperature", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"selector": "id/dev-1", "command": "temperature"})
	w := httptest.NewRecorder()

	ctrl.ServeHTTP(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCommandControllerPutWritesThroughDriver(t *testing.T) {
	driver := &fakeDriver{}
	deps, _ := testDeps(t, driver, &fakeDataClient{})
	ctrl := NewCommandController(deps)

	body := `{"setpoint":"19.0"}`
	r := httptest.NewRequest(http.MethodPut, "/api/v1/device/id/dev-1/setpoint", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"selector": "id/dev-1", "command": "setpoint"})
	w := httptest.NewRecorder()

	ctrl.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, driver.wroteParams, 1)
	assert.InDelta(t, 19.0, driver.wroteParams[0].NumericValue(), 1e-9)
}

func TestCommandControllerUnknownDeviceIs404(t *testing.T) {
	driver := &fakeDriver{}
	deps, _ := testDeps(t, driver, &fakeDataClient{})
	ctrl := NewCommandController(deps)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/device/id/nope/temperature", nil)
	r = mux.SetURLVars(r, map[string]string{"selector": "id/nope", "command": "temperature"})
	w := httptest.NewRecorder()

	ctrl.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
