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

// CheckBounds enforces PropertyValue.Minimum/Maximum inclusively (spec.md
// §8 Boundaries) against the value a PUT request supplied, before any
// inverse transform runs. Non-numeric values and unset bounds are no-ops.
func CheckBounds(cv *models.CommandValue, pv contract.PropertyValue) error {
	if !cv.Type.IsNumeric() {
		return nil
	}
	v := cv.NumericValue()
	if min, ok := parseFloat(pv.Minimum); ok && v < min {
		return errors.New(errors.KindInvalidArg, "value below minimum for "+cv.DeviceResourceName)
	}
	if max, ok := parseFloat(pv.Maximum); ok && v > max {
		return errors.New(errors.KindInvalidArg, "value above maximum for "+cv.DeviceResourceName)
	}
	return nil
}

// TransformWriteParameter applies the incoming (platform→device) pipeline
// of spec.md §4.2 to cv in place: the inverse of TransformReadResult's
// offset, scale, base and shift steps, run in reverse order, followed by
// the mask applied again (masking discards bits, so it has no inverse).
// It is a no-op for non-numeric types and for
// mask/shift on non-integral types, per spec.md §4.2 and §8 Boundaries.
func TransformWriteParameter(cv *models.CommandValue, pv contract.PropertyValue) error {
	if !cv.Type.IsNumeric() {
		return nil
	}

	if offset, ok := parseFloat(pv.Offset); ok && offset != 0 {
		cv.SetNumericValue(cv.NumericValue() - offset)
	}
	if scale, ok := parseFloat(pv.Scale); ok && scale != 1 && scale != 0 {
		cv.SetNumericValue(cv.NumericValue() / scale)
	}
	if base, ok := parseFloat(pv.Base); ok && base != 0 && base != 1 {
		v := cv.NumericValue()
		if v <= 0 {
			return errors.New(errors.KindInvalidArg, "value not in domain of base-"+pv.Base+" logarithm for "+cv.DeviceResourceName)
		}
		cv.SetNumericValue(math.Log(v) / math.Log(base))
	}
	if shift, ok := parseShift(pv.Shift); ok && cv.Type.IsIntegral() {
		applyShiftIncoming(cv, shift)
	}
	if mask, ok := parseMask(pv.Mask); ok && cv.Type.IsIntegral() {
		applyMaskOutgoing(cv, mask) // masking is idempotent; re-applying on write clamps to the addressed bitfield
	}
	return nil
}

func applyShiftIncoming(cv *models.CommandValue, shift int64) {
	// the inverse of a shift is a shift the other way.
	applyShiftOutgoing(cv, -shift)
}
