// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 Circutor S.A.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package main is a reference ProtocolDriver implementation over Modbus
// TCP and RTU, adapted from the Circutor Modbus example this SDK shipped
// with: it exists to prove pkg/models.ProtocolDriver out against a real
// wire protocol, not to be a complete Modbus register map.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/edgexfoundry/go-mod-core-contracts/clients/logger"
	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

const (
	protocolTCP = "TCP"
	protocolRTU = "RTU"
	dialTimeout = 2000 * time.Millisecond
)

// modbusConn is one live handler+client pair, kept around between requests
// so repeated reads against the same addressable reuse their TCP/RTU
// connection instead of redialing every command.
type modbusConn struct {
	tcpHandler *modbus.TCPClientHandler
	rtuHandler *modbus.RTUClientHandler
	client     modbus.Client
	mu         sync.Mutex
}

// ModbusDriver implements models.ProtocolDriver over goburrow/modbus.
// Register addresses and types come from each DeviceResource's Attributes
// map (keys "function", "address", "size"), mirroring the attribute-driven
// approach the distilled spec's Addressable data model assumes for every
// southbound protocol.
type ModbusDriver struct {
	lc   logger.LoggingClient
	add  models.AddDeviceCallback
	mu   sync.Mutex
	conn map[string]*modbusConn
}

// NewModbusDriver builds an unconfigured driver; the runtime supplies its
// device-adder callback via SetDeviceAdder before calling Initialize.
func NewModbusDriver() *ModbusDriver {
	return &ModbusDriver{conn: make(map[string]*modbusConn)}
}

func (d *ModbusDriver) SetDeviceAdder(add models.AddDeviceCallback) {
	d.add = add
}

func (d *ModbusDriver) Initialize(ctx context.Context, lc logger.LoggingClient, driverConfig map[string]string) error {
	d.lc = lc
	return nil
}

func (d *ModbusDriver) HandleReadCommands(ctx context.Context, deviceName string, addr contract.Addressable, reqs []models.CommandRequest) ([]*models.CommandValue, error) {
	conn, err := d.clientFor(addr)
	if err != nil {
		return nil, err
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()

	results := make([]*models.CommandValue, len(reqs))
	for i, req := range reqs {
		cfg, err := parseRegister(req.Attributes)
		if err != nil {
			return nil, err
		}
		raw, err := readRegister(conn.client, cfg)
		if err != nil {
			d.lc.Warn("modbus read failed", "device", deviceName, "resource", req.DeviceResourceName, "error", err.Error())
			return nil, err
		}
		cv, err := decode(req.DeviceResourceName, req.Type, raw)
		if err != nil {
			return nil, err
		}
		results[i] = cv
	}
	return results, nil
}

func (d *ModbusDriver) HandleWriteCommands(ctx context.Context, deviceName string, addr contract.Addressable, reqs []models.CommandRequest, params []*models.CommandValue) error {
	conn, err := d.clientFor(addr)
	if err != nil {
		return err
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()

	for i, req := range reqs {
		cfg, err := parseRegister(req.Attributes)
		if err != nil {
			return err
		}
		raw := encode(params[i])
		if err := writeRegister(conn.client, cfg, raw); err != nil {
			d.lc.Warn("modbus write failed", "device", deviceName, "resource", req.DeviceResourceName, "error", err.Error())
			return err
		}
	}
	return nil
}

// Discover is a no-op here: this reference driver has no bus-scan logic of
// its own, unlike the original example's slave-ID sweep. A real deployment
// would probe a configured address range and call d.add for each response.
func (d *ModbusDriver) Discover(ctx context.Context) {
	d.lc.Debug("modbus discover: no scan configured")
}

func (d *ModbusDriver) Stop(force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, c := range d.conn {
		c.mu.Lock()
		closeConn(c)
		c.mu.Unlock()
		delete(d.conn, key)
	}
	return nil
}

func closeConn(c *modbusConn) {
	if c.tcpHandler != nil {
		_ = c.tcpHandler.Close()
	}
	if c.rtuHandler != nil {
		_ = c.rtuHandler.Close()
	}
}

// clientFor returns the cached connection for addr, dialing one if this is
// the first request against it.
func (d *ModbusDriver) clientFor(addr contract.Addressable) (*modbusConn, error) {
	key := addr.Protocol + "|" + addr.Address + "|" + addr.Path

	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.conn[key]; ok {
		return c, nil
	}

	var c *modbusConn
	switch strings.ToUpper(addr.Protocol) {
	case protocolTCP:
		if addr.Address == "" || addr.Port == 0 {
			return nil, fmt.Errorf("modbus TCP addressable missing address/port: %s", addr.Name)
		}
		handler := modbus.NewTCPClientHandler(fmt.Sprintf("%s:%d", addr.Address, addr.Port))
		handler.Timeout = dialTimeout
		if err := handler.Connect(); err != nil {
			return nil, fmt.Errorf("modbus TCP connect %s: %w", addr.Address, err)
		}
		c = &modbusConn{tcpHandler: handler, client: modbus.NewClient(handler)}
	case protocolRTU:
		slave, err := strconv.Atoi(addr.Path)
		if err != nil || slave <= 0 || slave > 247 {
			return nil, fmt.Errorf("modbus RTU addressable has invalid slave id in Path: %s", addr.Path)
		}
		handler := modbus.NewRTUClientHandler(addr.Address)
		handler.BaudRate = 115200
		handler.DataBits = 8
		handler.StopBits = 1
		handler.Parity = "N"
		handler.SlaveId = byte(slave)
		handler.Timeout = dialTimeout
		if err := handler.Connect(); err != nil {
			return nil, fmt.Errorf("modbus RTU connect %s: %w", addr.Address, err)
		}
		c = &modbusConn{rtuHandler: handler, client: modbus.NewClient(handler)}
	default:
		return nil, fmt.Errorf("unsupported modbus protocol: %s", addr.Protocol)
	}

	d.conn[key] = c
	return c, nil
}

type registerConfig struct {
	function string
	address  uint16
	size     uint16
}

// parseRegister reads the function/address/size attributes a device
// profile's DeviceResource carries for a Modbus resource.
func parseRegister(attrs map[string]string) (registerConfig, error) {
	fn, ok := attrs["function"]
	if !ok {
		return registerConfig{}, fmt.Errorf("modbus resource missing 'function' attribute")
	}
	addrStr, ok := attrs["address"]
	if !ok {
		return registerConfig{}, fmt.Errorf("modbus resource missing 'address' attribute")
	}
	addr64, err := strconv.ParseUint(addrStr, 10, 16)
	if err != nil {
		return registerConfig{}, fmt.Errorf("modbus resource invalid address: %v", err)
	}
	size := uint64(1)
	if s, ok := attrs["size"]; ok {
		size, err = strconv.ParseUint(s, 10, 16)
		if err != nil {
			return registerConfig{}, fmt.Errorf("modbus resource invalid size: %v", err)
		}
	}
	return registerConfig{function: fn, address: uint16(addr64), size: uint16(size)}, nil
}

func readRegister(client modbus.Client, cfg registerConfig) ([]byte, error) {
	switch cfg.function {
	case "HoldingRegister":
		return client.ReadHoldingRegisters(cfg.address, cfg.size)
	case "InputRegister":
		return client.ReadInputRegisters(cfg.address, cfg.size)
	case "Coil":
		return client.ReadCoils(cfg.address, cfg.size)
	default:
		return nil, fmt.Errorf("unsupported modbus function: %s", cfg.function)
	}
}

func writeRegister(client modbus.Client, cfg registerConfig, value []byte) error {
	switch cfg.function {
	case "HoldingRegister":
		_, err := client.WriteMultipleRegisters(cfg.address, cfg.size, value)
		return err
	case "Coil":
		coilValue := uint16(0)
		if len(value) > 0 && value[0] != 0 {
			coilValue = 0xFF00
		}
		_, err := client.WriteSingleCoil(cfg.address, coilValue)
		return err
	default:
		return fmt.Errorf("unsupported modbus function for write: %s", cfg.function)
	}
}

// decode renders raw register bytes into a CommandValue of the resource's
// declared type; only the numeric and boolean kinds a register bank can
// express are handled.
func decode(name string, vt models.ValueType, raw []byte) (*models.CommandValue, error) {
	switch vt {
	case models.Bool:
		return models.NewBoolValue(name, 0, len(raw) > 0 && raw[len(raw)-1] != 0), nil
	case models.Uint16:
		if len(raw) < 2 {
			return nil, fmt.Errorf("short read for %s: %d bytes", name, len(raw))
		}
		return models.NewUint16Value(name, 0, binary.BigEndian.Uint16(raw)), nil
	case models.Uint32:
		if len(raw) < 4 {
			return nil, fmt.Errorf("short read for %s: %d bytes", name, len(raw))
		}
		return models.NewUint32Value(name, 0, binary.BigEndian.Uint32(raw)), nil
	case models.Int16:
		if len(raw) < 2 {
			return nil, fmt.Errorf("short read for %s: %d bytes", name, len(raw))
		}
		return models.NewInt16Value(name, 0, int16(binary.BigEndian.Uint16(raw))), nil
	case models.Int32:
		if len(raw) < 4 {
			return nil, fmt.Errorf("short read for %s: %d bytes", name, len(raw))
		}
		return models.NewInt32Value(name, 0, int32(binary.BigEndian.Uint32(raw))), nil
	default:
		return nil, fmt.Errorf("modbus driver cannot decode value type %s for %s", vt, name)
	}
}

// encode renders a CommandValue back into the big-endian register bytes
// writeRegister expects.
func encode(cv *models.CommandValue) []byte {
	switch cv.Type {
	case models.Bool:
		if cv.BoolValue() {
			return []byte{0x01}
		}
		return []byte{0x00}
	case models.Uint16, models.Int16:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(cv.Int64()))
		return buf
	case models.Int32:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(cv.Int64()))
		return buf
	default:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(cv.Uint64()))
		return buf
	}
}
