// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time of day in minutes since midnight (0-1439).
// Pricing and yield data arrive on a 30-minute grid; display spans may sit
// one minute off the grid (see PeriodTable.Span).
type TimeOfDay int

// ParseTimeOfDay parses a 4-digit "HHMM" string. Parsed times must sit on the
// 30-minute grid; off-grid values are rejected so period walks and slot
// lookups always land on grid points.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("invalid time of day %q: want 4-digit HHMM", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	m, err := strconv.Atoi(s[2:])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q: out of range", s)
	}
	if m%SlotMinutes != 0 {
		return 0, fmt.Errorf("invalid time of day %q: minutes must be on the %d-minute grid", s, SlotMinutes)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustTimeOfDay parses a 4-digit "HHMM" string, panicking on bad input.
// Intended for compile-time constants such as default period definitions.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String renders the time as a 4-digit "HHMM" string
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d%02d", int(t)/60, int(t)%60)
}

// Hour returns the hour component (0-23)
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component (0-59)
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// AddMinutes adds delta minutes (positive or negative, any magnitude) to t,
// wrapping minutes modulo 60 and hours modulo 24. The operation is a
// bijection on the 1440-point minute-of-day cycle:
// t.AddMinutes(d).AddMinutes(-d) == t.
func (t TimeOfDay) AddMinutes(delta int) TimeOfDay {
	h := int(t) / 60
	m := int(t)%60 + delta
	for m > 59 {
		h++
		m -= 60
	}
	for m < 0 {
		h--
		m += 60
	}
	for h > 23 {
		h -= 24
	}
	for h < 0 {
		h += 24
	}
	return TimeOfDay(h*60 + m)
}

// TimeOfDayFromTime extracts the wall-clock time of day from a timestamp
func TimeOfDayFromTime(ts time.Time) TimeOfDay {
	return TimeOfDay(ts.Hour()*60 + ts.Minute())
}

// SplitTimestamp splits an ISO-8601 timestamp into its calendar date and
// time of day by fixed substring offsets: date = s[0:10], time = s[11:16]
// with the colon removed. The upstream rate records carry local wall-clock
// timestamps, so no timezone conversion is applied.
func SplitTimestamp(s string) (string, TimeOfDay, error) {
	if len(s) < 16 {
		return "", 0, fmt.Errorf("invalid timestamp %q: too short", s)
	}
	date := s[0:10]
	t, err := ParseTimeOfDay(strings.ReplaceAll(s[11:16], ":", ""))
	if err != nil {
		return "", 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return date, t, nil
}
