// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package transformer

import (
	"math"
	"testing"

	contract "github.com/edgexfoundry/go-mod-core-contracts/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgexfoundry/device-sdk-go/internal/errors"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// TestScenario1TemperatureScaled is spec.md §8 end-to-end scenario 1:
// int16=500, scale=0.1, offset=0 → "50.0".
func TestScenario1TemperatureScaled(t *testing.T) {
	cv := models.NewInt16Value("temperature", 0, 500)
	pv := contract.PropertyValue{Scale: "0.1"}

	require.NoError(t, TransformReadResult(cv, pv, nil))
	assert.Equal(t, models.Float64, cv.Type)
	assert.Equal(t, "50.0", cv.String())
}

func TestOutgoingThenIncomingRoundTrip(t *testing.T) {
	pv := contract.PropertyValue{Scale: "0.1", Offset: "2"}
	original := 500.0

	cv := models.NewInt16Value("temperature", 0, int16(original))
	require.NoError(t, TransformReadResult(cv, pv, nil))

	back := models.NewFloat64Value("temperature", 0, cv.NumericValue())
	require.NoError(t, TransformWriteParameter(back, pv))

	assert.InDelta(t, original, back.NumericValue(), 1e-9*math.Max(1, math.Abs(original)))
}

func TestMaskAndShiftOutgoing(t *testing.T) {
	cv := models.NewUint16Value("status", 0, 0b1111_0000)
	pv := contract.PropertyValue{Mask: "0x00F0", Shift: "4"}

	require.NoError(t, TransformReadResult(cv, pv, nil))
	assert.Equal(t, uint64(0x0F), cv.Uint64())
}

func TestMaskShiftNoOpOnNonIntegral(t *testing.T) {
	cv := models.NewFloat32Value("reading", 0, 12.5)
	pv := contract.PropertyValue{Mask: "0x0F", Shift: "2"}

	require.NoError(t, TransformReadResult(cv, pv, nil))
	assert.Equal(t, float64(12.5), cv.NumericValue())
}

func TestAssertionFailureReturnsKind(t *testing.T) {
	cv := models.NewInt16Value("temperature", 0, 999)
	pv := contract.PropertyValue{Assertion: "500"}

	err := TransformReadResult(cv, pv, nil)
	require.Error(t, err)
	kind, ok := errors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindAssertionFailed, kind)
}

func TestEnumerationMapping(t *testing.T) {
	cv := models.NewUint8Value("valveState", 0, 1)
	pv := contract.PropertyValue{}

	require.NoError(t, TransformReadResult(cv, pv, map[string]string{"1": "open", "0": "closed"}))
	assert.Equal(t, models.String, cv.Type)
	assert.Equal(t, "open", cv.String())
}

func TestCheckBoundsInclusive(t *testing.T) {
	pv := contract.PropertyValue{Minimum: "0", Maximum: "100"}

	assert.NoError(t, CheckBounds(models.NewFloat64Value("x", 0, 0), pv))
	assert.NoError(t, CheckBounds(models.NewFloat64Value("x", 0, 100), pv))
	assert.Error(t, CheckBounds(models.NewFloat64Value("x", 0, -1), pv))
	assert.Error(t, CheckBounds(models.NewFloat64Value("x", 0, 100.1), pv))
}
