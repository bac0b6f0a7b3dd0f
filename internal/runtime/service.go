// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package runtime implements the lifecycle orchestrator of spec.md §4.7
// (component C8): the startup state machine that brings an adapter from
// INIT through SCHEDULED, and the shutdown sequence that unwinds it.
package runtime

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/autoevent"
	"github.com/edgexfoundry/device-sdk-go/internal/cache"
	"github.com/edgexfoundry/device-sdk-go/internal/clients"
	"github.com/edgexfoundry/device-sdk-go/internal/common"
	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
	"github.com/edgexfoundry/device-sdk-go/internal/event"
	"github.com/edgexfoundry/device-sdk-go/internal/handler"
	"github.com/edgexfoundry/device-sdk-go/internal/provision"
	"github.com/edgexfoundry/device-sdk-go/internal/worker"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// State names the startup state machine's positions, in the order
// spec.md §4.7 defines them.
type State int

const (
	StateInit State = iota
	StateConfigLoaded
	StatePlatformReady
	StateRegistered
	StateProfilesUploaded
	StateDevicesLoaded
	StateServing
	StateScheduled
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateConfigLoaded:
		return "CONFIG_LOADED"
	case StatePlatformReady:
		return "PLATFORM_READY"
	case StateRegistered:
		return "REGISTERED"
	case StateProfilesUploaded:
		return "PROFILES_UPLOADED"
	case StateDevicesLoaded:
		return "DEVICES_LOADED"
	case StateServing:
		return "SERVING"
	case StateScheduled:
		return "SCHEDULED"
	default:
		return "UNKNOWN"
	}
}

// Service owns every runtime collaborator spec.md §5's "Ownership"
// paragraph lists: the caches, driver, scheduler, pool, HTTP server and
// logger. It is built by pkg/service and driven entirely through Start and
// Stop; nothing here is exported for adapters to reach into directly.
type Service struct {
	serviceName string
	driver      models.ProtocolDriver

	config   *common.Config
	logger   logger.LoggingClient
	registry clients.RegistryClient
	metadata clients.MetadataClient
	data     clients.DataClient

	devices  *cache.DeviceCache
	profiles *cache.ProfileCache
	pool     *worker.Pool
	sched    *autoevent.Scheduler
	pub      *event.Publisher
	cmdCtrl  *handler.CommandController

	server *http.Server

	state State
}

// Deps bundles the constructor-time collaborators pkg/service assembles
// before calling New; everything else (caches, pool, scheduler, publisher)
// the orchestrator builds for itself.
type Deps struct {
	ServiceName string
	Driver      models.ProtocolDriver
	Config      *common.Config
	Logger      logger.LoggingClient
	Registry    clients.RegistryClient
	Metadata    clients.MetadataClient
	Data        clients.DataClient
}

func New(d Deps) *Service {
	return &Service{
		serviceName: d.ServiceName,
		driver:      d.Driver,
		config:      d.Config,
		logger:      d.Logger,
		registry:    d.Registry,
		metadata:    d.Metadata,
		data:        d.Data,
		devices:     cache.NewDeviceCache(),
		profiles:    cache.NewProfileCache(),
		state:       StateInit,
	}
}

// State reports the orchestrator's current position, mainly for tests.
func (s *Service) State() State { return s.state }

// Start drives the service through every transition of spec.md §4.7 in
// order, INIT→SCHEDULED, returning the first fatal error encountered. On
// error the caller is expected to call Stop(true) to unwind whatever
// partial state was built, per spec.md §7's "Startup errors abort
// startup; partial state is torn down by the caller invoking stop(force=true)".
func (s *Service) Start(ctx context.Context) error {
	if err := s.toConfigLoaded(); err != nil {
		return err
	}
	if err := s.toPlatformReady(ctx); err != nil {
		return err
	}
	if err := s.toRegistered(ctx); err != nil {
		return err
	}
	if err := s.toProfilesUploaded(ctx); err != nil {
		return err
	}
	if err := s.toDevicesLoaded(ctx); err != nil {
		return err
	}
	if err := s.toServing(ctx); err != nil {
		return err
	}
	if err := s.toScheduled(ctx); err != nil {
		return err
	}
	return nil
}

// toConfigLoaded is a no-op transition in this orchestrator: Config is
// supplied at construction time by pkg/startup.Bootstrap, which already
// performed the registry-vs-local resolution spec.md §4.7 describes for
// INIT→CONFIG_LOADED. What remains here is recording the transition.
func (s *Service) toConfigLoaded() error {
	if s.config == nil {
		return sdkErrors.New(sdkErrors.KindBadConfig, "no configuration supplied")
	}
	s.state = StateConfigLoaded
	s.logger.Info("configuration loaded", "service", s.serviceName)
	return nil
}

// toPlatformReady pings the data and metadata services, each retried
// connectretries times with timeout ms between attempts.
func (s *Service) toPlatformReady(ctx context.Context) error {
	retries := s.config.Service.ConnectRetries
	timeout := time.Duration(s.config.Service.Timeout) * time.Millisecond

	if err := pingWithRetry(ctx, "metadata", retries, timeout, s.metadata.Ping); err != nil {
		return err
	}
	if err := pingWithRetry(ctx, "data", retries, timeout, s.data.Ping); err != nil {
		return err
	}

	s.state = StatePlatformReady
	s.logger.Info("platform services reachable")
	return nil
}

func pingWithRetry(ctx context.Context, name string, retries int, timeout time.Duration, ping func(context.Context) error) error {
	attempts := retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = ping(ctx); lastErr == nil {
			return nil
		}
		if timeout > 0 {
			time.Sleep(timeout)
		}
	}
	return sdkErrors.Wrap(sdkErrors.KindRemoteServerDown, fmt.Sprintf("%s service unreachable after %d attempts", name, attempts), lastErr)
}

// toRegistered fetches or creates this adapter's own device-service record
// in metadata, including its backing addressable.
func (s *Service) toRegistered(ctx context.Context) error {
	addrName := s.serviceName + "-addressable"
	addr, err := s.metadata.AddressableForName(ctx, addrName)
	if err != nil {
		addr = contract.Addressable{
			Name:     addrName,
			Protocol: "HTTP",
			Method:   http.MethodPost,
			Address:  s.config.Service.Host,
			Port:     s.config.Service.Port,
			Path:     common.APICallbackRoute,
		}
		if _, err := s.metadata.AddAddressable(ctx, addr); err != nil {
			return err
		}
	}

	if _, err := s.metadata.DeviceServiceForName(ctx, s.serviceName); err != nil {
		ds := contract.DeviceService{
			Name:           s.serviceName,
			Addressable:    addr,
			AdminState:     contract.Unlocked,
			OperatingState: contract.Enabled,
			Labels:         s.config.Service.Labels,
		}
		if _, err := s.metadata.AddDeviceService(ctx, ds); err != nil {
			return err
		}
	}

	s.state = StateRegistered
	s.logger.Info("device service registered", "name", s.serviceName)
	return nil
}

// toProfilesUploaded uploads every profile file under Device.ProfilesDir
// that metadata doesn't already have.
func (s *Service) toProfilesUploaded(ctx context.Context) error {
	if err := provision.LoadProfiles(ctx, s.config.Device.ProfilesDir, s.profiles, s.metadata); err != nil {
		return err
	}
	s.state = StateProfilesUploaded
	s.logger.Info("device profiles uploaded")
	return nil
}

// toDevicesLoaded pulls every device this adapter already owns into C2,
// then creates anything listed in DeviceList that's missing, and fetches
// from metadata any profile those devices reference that is not cached yet.
func (s *Service) toDevicesLoaded(ctx context.Context) error {
	if err := provision.LoadDevices(ctx, s.serviceName, s.config.DeviceList, s.devices, s.metadata); err != nil {
		return err
	}
	for _, d := range s.devices.All() {
		if _, ok := s.profiles.GetByName(d.Profile.Name); ok {
			continue
		}
		p, err := s.metadata.DeviceProfileForName(ctx, d.Profile.Name)
		if err != nil {
			s.logger.Warn("profile for device not found in metadata", "device", d.Name, "profile", d.Profile.Name)
			continue
		}
		s.profiles.Add(p)
	}
	s.state = StateDevicesLoaded
	s.logger.Info("devices loaded", "count", len(s.devices.All()))
	return nil
}

// toServing initializes the driver, stands up the worker pool, event
// publisher and HTTP server, and starts listening.
func (s *Service) toServing(ctx context.Context) error {
	addDevice := provision.NewAddDeviceCallback(s.serviceName, s.devices, s.metadata)
	s.driver.SetDeviceAdder(addDevice)

	if err := s.driver.Initialize(ctx, s.logger, s.config.Driver); err != nil {
		return sdkErrors.Wrap(sdkErrors.KindDriverUnstart, "driver initialize failed", err)
	}

	s.pool = worker.New(common.DefaultWorkerPoolSize)
	s.pool.Start()
	s.pub = event.NewPublisher(s.pool, s.data, s.logger)
	s.sched = autoevent.NewScheduler(s.pool)

	deps := handler.Deps{
		Devices:        s.devices,
		Profiles:       s.profiles,
		Driver:         s.driver,
		Publisher:      s.pub,
		Pool:           s.pool,
		Logger:         s.logger,
		Config:         s.config,
		Metadata:       s.metadata,
		ServiceName:    s.serviceName,
		AddOrGetDevice: addDevice,
	}
	s.cmdCtrl = handler.NewCommandController(deps)
	router := handler.NewRouter(deps)
	s.server = &http.Server{Addr: fmt.Sprintf("%s:%d", s.config.Service.Host, s.config.Service.Port), Handler: router}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", "error", err.Error())
		}
	}()

	s.state = StateServing
	s.logger.Info("serving", "address", s.server.Addr)
	return nil
}

// toScheduled creates configured Schedule/ScheduleEvent metadata entries,
// turns the ones naming discovery or a device command into C7 tasks, and
// starts the scheduler. A registry health-check registration follows once
// a registry is present.
func (s *Service) toScheduled(ctx context.Context) error {
	for name, freq := range s.config.Schedules {
		sc := contract.Schedule{Name: name, Frequency: freq}
		if _, err := s.metadata.AddSchedule(ctx, sc); err != nil && !sdkErrors.Is(err, sdkErrors.KindHTTPConflict) {
			return err
		}
	}

	for name, se := range s.config.ScheduleEvents {
		evt := contract.ScheduleEvent{Name: name, Schedule: se.Schedule, Addressable: contract.Addressable{Path: se.Path}}
		if _, err := s.metadata.AddScheduleEvent(ctx, evt); err != nil && !sdkErrors.Is(err, sdkErrors.KindHTTPConflict) {
			return err
		}
	}

	events, err := s.metadata.ScheduleEventsForServiceName(ctx, s.serviceName)
	if err != nil {
		return err
	}
	for _, se := range events {
		freq, ok := s.config.Schedules[se.Schedule]
		if !ok {
			continue
		}
		interval, err := autoevent.ParseISO8601Duration(freq)
		if err != nil {
			return sdkErrors.Wrap(sdkErrors.KindBadConfig, "schedule event "+se.Name+" frequency", err)
		}
		path := se.Addressable.Path
		task := s.taskFor(se.Name, path)
		if task == nil {
			return sdkErrors.New(sdkErrors.KindBadConfig, "schedule event path targets neither discovery nor a device command: "+path)
		}
		s.sched.AddTask(autoevent.Task{Name: se.Name, Interval: interval, Action: task})
	}
	s.sched.Start()

	if s.registry != nil {
		if err := s.registry.Register(); err != nil {
			return err
		}
	}

	s.state = StateScheduled
	s.logger.Info("scheduled tasks started")
	return nil
}

// taskFor resolves a ScheduleEvent's addressable path into the action it
// should perform: triggering discovery, or re-running a device command
// through the command dispatcher in-process (spec.md §9: scheduled jobs
// invoke the handler directly and avoid loopback HTTP).
func (s *Service) taskFor(name, path string) worker.Task {
	if path == common.APIDiscoveryRoute {
		return func() { s.driver.Discover(context.Background()) }
	}
	if selector, command, ok := parseDeviceCommandPath(path); ok {
		return func() {
			if err := s.cmdCtrl.ExecuteScheduled(context.Background(), selector, command); err != nil {
				s.logger.Warn("autoevent command failed", "task", name, "error", err.Error())
			}
		}
	}
	return nil
}

func isDeviceCommandPath(path string) bool {
	const prefix = "/api/v1/device/"
	return len(path) > len(prefix) && path[:len(prefix)] == prefix
}

// parseDeviceCommandPath splits a device-command path ("/api/v1/device/
// name/therm1/temperature") into the selector ("name/therm1") and command
// ("temperature") ExecuteScheduled expects.
func parseDeviceCommandPath(path string) (selector, command string, ok bool) {
	const prefix = "/api/v1/device/"
	if !isDeviceCommandPath(path) {
		return "", "", false
	}
	rest := path[len(prefix):]
	idx := strings.LastIndex(rest, "/")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}

// Stop unwinds the service in this order: scheduler, HTTP server, driver,
// then pool. The device and profile caches are not cleared; they are
// released together with the Service.
func (s *Service) Stop(force bool) error {
	if s.sched != nil {
		s.sched.Stop()
	}
	if s.server != nil {
		_ = s.server.Close()
	}
	if s.driver != nil {
		if err := s.driver.Stop(force); err != nil {
			s.logger.Warn("driver stop reported an error", "error", err.Error())
		}
	}
	if s.pool != nil {
		s.pool.Shutdown(force)
	}
	s.logger.Info("service stopped", "forced", force)
	return nil
}
