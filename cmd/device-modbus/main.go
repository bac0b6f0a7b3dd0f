// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 Circutor S.A.
//
// SPDX-License-Identifier: Apache-2.0
//
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/edgexfoundry/device-sdk-go/pkg/startup"
)

const serviceName = "device-modbus"

func main() {
	configDir := flag.String("confdir", "./res", "directory holding configuration.toml")
	configFile := flag.String("conf", "configuration.toml", "configuration file name")
	flag.Parse()

	driver := NewModbusDriver()

	if err := startup.Bootstrap(serviceName, *configDir, *configFile, driver); err != nil {
		fmt.Fprintln(os.Stderr, serviceName+": "+err.Error())
		os.Exit(1)
	}
}
