// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package handler

import (
	"strconv"
	"strings"

	sdkErrors "github.com/edgexfoundry/device-sdk-go/internal/errors"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

func parseValueType(s string) (models.ValueType, error) {
	switch strings.ToLower(s) {
	case "bool":
		return models.Bool, nil
	case "string":
		return models.String, nil
	case "uint8":
		return models.Uint8, nil
	case "uint16":
		return models.Uint16, nil
	case "uint32":
		return models.Uint32, nil
	case "uint64":
		return models.Uint64, nil
	case "int8":
		return models.Int8, nil
	case "int16":
		return models.Int16, nil
	case "int32":
		return models.Int32, nil
	case "int64":
		return models.Int64, nil
	case "float32":
		return models.Float32, nil
	case "float64":
		return models.Float64, nil
	case "binary":
		return models.Binary, nil
	default:
		return 0, sdkErrors.New(sdkErrors.KindBadConfig, "unknown value type: "+s)
	}
}

// coerceValue parses raw (the string a PUT body supplied, or a driver's
// textual result) into a CommandValue of the resource's declared type.
func coerceValue(resourceName string, t models.ValueType, origin int64, raw string) (*models.CommandValue, error) {
	switch t {
	case models.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, sdkErrors.Wrap(sdkErrors.KindInvalidArg, "not a bool: "+raw, err)
		}
		return models.NewBoolValue(resourceName, origin, v), nil
	case models.String:
		return models.NewStringValue(resourceName, origin, raw), nil
	case models.Binary:
		return models.NewBinaryValue(resourceName, origin, []byte(raw)), nil
	case models.Uint8, models.Uint16, models.Uint32, models.Uint64,
		models.Int8, models.Int16, models.Int32, models.Int64,
		models.Float32, models.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, sdkErrors.Wrap(sdkErrors.KindInvalidArg, "not a number: "+raw, err)
		}
		cv := newNumeric(resourceName, t, origin)
		cv.SetNumericValue(f)
		return cv, nil
	default:
		return nil, sdkErrors.New(sdkErrors.KindInvalidArg, "unsupported value type for "+resourceName)
	}
}

func newNumeric(name string, t models.ValueType, origin int64) *models.CommandValue {
	switch t {
	case models.Uint8:
		return models.NewUint8Value(name, origin, 0)
	case models.Uint16:
		return models.NewUint16Value(name, origin, 0)
	case models.Uint32:
		return models.NewUint32Value(name, origin, 0)
	case models.Uint64:
		return models.NewUint64Value(name, origin, 0)
	case models.Int8:
		return models.NewInt8Value(name, origin, 0)
	case models.Int16:
		return models.NewInt16Value(name, origin, 0)
	case models.Int32:
		return models.NewInt32Value(name, origin, 0)
	case models.Int64:
		return models.NewInt64Value(name, origin, 0)
	case models.Float32:
		return models.NewFloat32Value(name, origin, 0)
	default:
		return models.NewFloat64Value(name, origin, 0)
	}
}
