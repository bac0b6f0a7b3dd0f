// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandValueStringForms(t *testing.T) {
	assert.Equal(t, "true", NewBoolValue("x", 0, true).String())
	assert.Equal(t, "hi", NewStringValue("x", 0, "hi").String())
	assert.Equal(t, "42", NewInt32Value("x", 0, 42).String())
	assert.Equal(t, "42", NewUint8Value("x", 0, 42).String())
	assert.Equal(t, "3.5", NewFloat32Value("x", 0, 3.5).String())
}

func TestCommandValueSaturatesOnOverflow(t *testing.T) {
	cv := NewUint8Value("x", 0, 0)
	cv.SetNumericValue(1000)
	assert.Equal(t, uint64(255), cv.Uint64())

	cv2 := NewInt8Value("x", 0, 0)
	cv2.SetNumericValue(-1000)
	assert.Equal(t, int64(-128), cv2.Int64())
}

func TestCommandValueBinaryRoundTripsBase64(t *testing.T) {
	cv := NewBinaryValue("x", 0, []byte{0x01, 0x02, 0xff})
	assert.Equal(t, "AQL/", cv.String())
	assert.Equal(t, []byte{0x01, 0x02, 0xff}, cv.BinaryValue())
}

func TestCommandValueRemapToString(t *testing.T) {
	cv := NewUint8Value("valve", 0, 1)
	cv.RemapToString("open")
	assert.Equal(t, String, cv.Type)
	assert.Equal(t, "open", cv.String())
}
