// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package transformer

import (
	"math"

	contract "github.com/edgexfoundry/go-mod-core-contracts/models"

	"github.com/edgexfoundry/device-sdk-go/internal/errors"
	"github.com/edgexfoundry/device-sdk-go/pkg/models"
)

// TransformReadResult applies the outgoing (device→platform) pipeline of
// spec.md §4.2 to cv in place: mask, shift, base, scale, offset, then
// assertion, then enumeration mapping. It returns an *errors.SdkError with
// KindAssertionFailed if the assertion step fails; the caller (the command
// dispatcher) is responsible for disabling the owning device, since this
// package has no access to the device registry.
func TransformReadResult(cv *models.CommandValue, pv contract.PropertyValue, mappings map[string]string) error {
	if !cv.Type.IsNumeric() {
		return applyMapping(cv, mappings)
	}

	if mask, ok := parseMask(pv.Mask); ok && cv.Type.IsIntegral() {
		applyMaskOutgoing(cv, mask)
	}
	if shift, ok := parseShift(pv.Shift); ok && cv.Type.IsIntegral() {
		applyShiftOutgoing(cv, shift)
	}
	transformed := false
	if base, ok := parseFloat(pv.Base); ok && base != 0 {
		cv.SetNumericValue(math.Pow(base, cv.NumericValue()))
		transformed = true
	}
	if scale, ok := parseFloat(pv.Scale); ok && scale != 1 {
		cv.SetNumericValue(cv.NumericValue() * scale)
		transformed = true
	}
	if offset, ok := parseFloat(pv.Offset); ok && offset != 0 {
		cv.SetNumericValue(cv.NumericValue() + offset)
		transformed = true
	}

	// base/scale/offset commonly turn an integral reading fractional
	// (int16=500, scale=0.1 → 50.0); an integral Type would otherwise
	// round it back on String(), so promote once any of them ran.
	if transformed && cv.Type.IsIntegral() {
		cv.Type = models.Float64
	}

	if pv.Assertion != "" && cv.String() != pv.Assertion {
		return errors.New(errors.KindAssertionFailed,
			"resource "+cv.DeviceResourceName+" value "+cv.String()+" failed assertion "+pv.Assertion)
	}

	return applyMapping(cv, mappings)
}

func applyMapping(cv *models.CommandValue, mappings map[string]string) error {
	if len(mappings) == 0 {
		return nil
	}
	if mapped, ok := mappings[cv.String()]; ok {
		cv.RemapToString(mapped)
	}
	return nil
}

func applyMaskOutgoing(cv *models.CommandValue, mask uint64) {
	if cv.Type.IsSigned() {
		cv.SetNumericValue(float64(cv.Int64() & int64(mask)))
		return
	}
	cv.SetNumericValue(float64(cv.Uint64() & mask))
}

func applyShiftOutgoing(cv *models.CommandValue, shift int64) {
	if shift == 0 {
		return
	}
	if shift > 0 {
		// right shift: signed uses arithmetic shift, unsigned logical.
		if cv.Type.IsSigned() {
			cv.SetNumericValue(float64(cv.Int64() >> uint(shift)))
		} else {
			cv.SetNumericValue(float64(cv.Uint64() >> uint(shift)))
		}
		return
	}
	if cv.Type.IsSigned() {
		cv.SetNumericValue(float64(cv.Int64() << uint(-shift)))
	} else {
		cv.SetNumericValue(float64(cv.Uint64() << uint(-shift)))
	}
}
