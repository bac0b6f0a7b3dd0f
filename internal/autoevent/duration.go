// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0
//

// Package autoevent implements the internal scheduler of spec.md §4.6
// (component C7): the periodic firing of ScheduleEvents and discovery onto
// the worker pool.
package autoevent

import (
	"strconv"
	"strings"
	"time"

	"github.com/edgexfoundry/device-sdk-go/internal/errors"
)

// ParseISO8601Duration parses the restricted ISO-8601 duration subset
// spec.md §4.7 requires of ScheduleEvent frequencies: "PT<n>[HMS]", e.g.
// "PT2S", "PT5M", "PT1H". Combined designators ("PT1H30M") are accepted
// too since the platform's Schedule.Frequency field is not restricted to a
// single unit.
func ParseISO8601Duration(freq string) (time.Duration, error) {
	if !strings.HasPrefix(freq, "PT") || len(freq) < 3 {
		return 0, errors.New(errors.KindBadConfig, "not a PT<n>[HMS] duration: "+freq)
	}
	rest := freq[2:]

	var total time.Duration
	var numBuf strings.Builder
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			numBuf.WriteRune(r)
		case r == 'H' || r == 'M' || r == 'S':
			if numBuf.Len() == 0 {
				return 0, errors.New(errors.KindBadConfig, "malformed duration: "+freq)
			}
			n, err := strconv.ParseInt(numBuf.String(), 10, 64)
			if err != nil {
				return 0, errors.Wrap(errors.KindBadConfig, "malformed duration: "+freq, err)
			}
			numBuf.Reset()
			switch r {
			case 'H':
				total += time.Duration(n) * time.Hour
			case 'M':
				total += time.Duration(n) * time.Minute
			case 'S':
				total += time.Duration(n) * time.Second
			}
		default:
			return 0, errors.New(errors.KindBadConfig, "malformed duration: "+freq)
		}
	}
	if numBuf.Len() > 0 {
		return 0, errors.New(errors.KindBadConfig, "malformed duration: "+freq)
	}
	if total <= 0 {
		return 0, errors.New(errors.KindBadConfig, "non-positive duration: "+freq)
	}
	return total, nil
}
