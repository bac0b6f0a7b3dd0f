// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package errors carries the SDK's typed error kinds. Every fatal or
// request-scoped failure the runtime produces wraps one of these kinds so
// that callers (the lifecycle orchestrator, the HTTP handlers) can branch on
// what happened instead of matching error strings.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of an SdkError, independent of the
// underlying cause it wraps.
type Kind int

const (
	KindNoDeviceImpl Kind = iota
	KindNoDeviceName
	KindNoDeviceVersion
	KindInvalidArg
	KindBadConfig
	KindRemoteServerDown
	KindDriverUnstart
	KindHTTPConflict
	KindHTTPNotFound
	KindMetadataClientFail
	KindDataClientFail
	KindAssertionFailed
	KindDeviceLocked
	KindDeviceDisabled
	KindProfileNotFound
	KindDuplicateDevice
	// KindDriverError is a runtime (not startup) failure returned by the
	// driver's HandleReadCommands/HandleWriteCommands; spec.md §6 maps it
	// to HTTP 502 but does not otherwise name it among the startup-facing
	// kinds above, so it is kept distinct from KindDriverUnstart.
	KindDriverError
	// KindReadOnlyResource is a PUT targeting a resource whose ReadWrite is
	// "R"; spec.md §4.3 step 4 maps this to HTTP 405, distinct from a
	// malformed-request KindInvalidArg (400).
	KindReadOnlyResource
)

var kindNames = map[Kind]string{
	KindNoDeviceImpl:       "NoDeviceImpl",
	KindNoDeviceName:       "NoDeviceName",
	KindNoDeviceVersion:    "NoDeviceVersion",
	KindInvalidArg:         "InvalidArg",
	KindBadConfig:          "BadConfig",
	KindRemoteServerDown:   "RemoteServerDown",
	KindDriverUnstart:      "DriverUnstart",
	KindHTTPConflict:       "HttpConflict",
	KindHTTPNotFound:       "HttpNotFound",
	KindMetadataClientFail: "MetadataClientFail",
	KindDataClientFail:     "DataClientFail",
	KindAssertionFailed:    "AssertionFailed",
	KindDeviceLocked:       "DeviceLocked",
	KindDeviceDisabled:     "DeviceDisabled",
	KindProfileNotFound:    "ProfileNotFound",
	KindDuplicateDevice:    "DuplicateDevice",
	KindDriverError:        "DriverError",
	KindReadOnlyResource:   "ReadOnlyResource",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// SdkError is the error type produced by every internal package. It carries
// a Kind for programmatic branching plus the wrapped cause for %+v stack
// traces via github.com/pkg/errors.
type SdkError struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string) *SdkError {
	return &SdkError{kind: kind, message: message}
}

func Wrap(kind Kind, message string, cause error) *SdkError {
	return &SdkError{kind: kind, message: message, cause: errors.WithStack(cause)}
}

func (e *SdkError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *SdkError) Cause() error { return e.cause }

func (e *SdkError) Kind() Kind { return e.kind }

// Is reports whether err is an *SdkError of the given kind.
func Is(err error, kind Kind) bool {
	se, ok := errors.Cause(err).(*SdkError)
	if !ok {
		return false
	}
	return se.kind == kind
}

// KindOf extracts the Kind from err, returning ok=false if err is not (or
// does not wrap) an *SdkError.
func KindOf(err error) (Kind, bool) {
	se, ok := errors.Cause(err).(*SdkError)
	if !ok {
		return 0, false
	}
	return se.kind, true
}
