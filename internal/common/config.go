// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package common

import (
	"io/ioutil"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// ServiceInfo is the [Service] section of configuration.toml.
type ServiceInfo struct {
	Host           string
	Port           int
	Timeout        int // milliseconds, waited after each failed ping attempt
	ConnectRetries int
	CheckInterval  string
	Labels         []string
	StartupMsg     string
}

// ClientInfo is one entry of the [Clients] section, keyed by "Data" or
// "Metadata".
type ClientInfo struct {
	Host string
	Port int
}

// DeviceInfo is the [Device] section.
type DeviceInfo struct {
	ProfilesDir   string
	DataTransform bool
}

// LoggingInfo is the [Logging] section.
type LoggingInfo struct {
	File      string
	RemoteURL string
}

// RegistryInfo is the [Registry] section; when Host is empty the service
// runs entirely off the local file per spec.md §9's "Config registry
// absent" note.
type RegistryInfo struct {
	Host string
	Port int
	Type string
}

// ScheduleEventConfig is one entry of [ScheduleEvents.<name>].
type ScheduleEventConfig struct {
	Schedule string
	Path     string
}

// AddressableConfig is the [[DeviceList]].Addressable table.
type AddressableConfig struct {
	Name     string
	Protocol string
	Method   string
	Address  string
	Port     int
	Path     string
}

// DeviceConfig is one entry of [[DeviceList]].
type DeviceConfig struct {
	Name        string
	Profile     string
	Description string
	Labels      []string
	Addressable AddressableConfig
}

// Config is the full merged configuration surface of spec.md §6.
type Config struct {
	Service        ServiceInfo
	Clients        map[string]ClientInfo
	Device         DeviceInfo
	Logging        LoggingInfo
	Registry       RegistryInfo
	Driver         map[string]string
	Schedules      map[string]string
	ScheduleEvents map[string]ScheduleEventConfig
	DeviceList     []DeviceConfig
}

// LoadFromFile parses configuration.toml at path into a Config. This is the
// CONFIG_LOADED transition's "read local" fallback.
func LoadFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(errors.KindBadConfig, "read configuration file "+path, err)
	}
	cfg := new(Config)
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.KindBadConfig, "parse configuration file "+path, err)
	}
	return cfg, nil
}

// Marshal renders the configuration as TOML. GET /api/v1/config does not
// use it; that handler encodes the Config as JSON.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(*c)
}

// DataClient and MetadataClient look up the two well-known [Clients]
// entries; a missing entry is a configuration error rather than a runtime
// crash.
func (c *Config) DataClient() (ClientInfo, error) {
	ci, ok := c.Clients["Data"]
	if !ok {
		return ClientInfo{}, errors.New(errors.KindBadConfig, "Clients.Data not configured")
	}
	return ci, nil
}

func (c *Config) MetadataClient() (ClientInfo, error) {
	ci, ok := c.Clients["Metadata"]
	if !ok {
		return ClientInfo{}, errors.New(errors.KindBadConfig, "Clients.Metadata not configured")
	}
	return ci, nil
}
