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
	"strings"
)

// APIError represents an API-related error
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API error at %s (status %d): %s: %v", e.Endpoint, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("API error at %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if this error should be retried
func (e *APIError) IsRetryable() bool {
	return isRetryableStatus(e.StatusCode)
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// InvalidPeriodError reports a period definition whose start comes after its
// end. Periods that wrap midnight are rejected rather than silently mishandled.
type InvalidPeriodError struct {
	Name  string
	Start TimeOfDay
	End   TimeOfDay
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %q: start %s cannot be after end %s", e.Name, e.Start, e.End)
}

// EmptyWindowError reports an average requested over zero samples. This is a
// distinct failure, not a silent NaN, and is reported separately from a
// "value unavailable" result.
type EmptyWindowError struct {
	What string
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("empty window: no samples to average for %s", e.What)
}

// AmbiguousProductError reports a product code prefix that resolved to zero
// or more than one product in the directory
type AmbiguousProductError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousProductError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("no products found for code %q", e.Prefix)
	}
	return fmt.Sprintf("more than one product found for code %q: %s", e.Prefix, strings.Join(e.Matches, ", "))
}

// StorageError represents a storage operation error
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s at %s: %v", e.Operation, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DataError represents insufficient or missing data error
type DataError struct {
	DataType string
	Message  string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error for %s: %s", e.DataType, e.Message)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}
