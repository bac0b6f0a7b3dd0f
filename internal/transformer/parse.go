// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package transformer implements the per-resource numeric mapping pipeline
// of spec.md §4.2 (component C3): mask/shift/base/scale/offset in the
// outgoing direction, its inverse incoming, assertion checking, and
// enumeration remapping. Device profile property descriptors carry every
// one of these as strings (they come off YAML/JSON wire documents), so this
// file centralizes the string-to-number parsing they all need.
package transformer

import "strconv"

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseMask(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseShift(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
