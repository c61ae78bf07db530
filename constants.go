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

import "time"

const (
	// OctopusRESTAPIBase is the base URL for the Octopus Energy public pricing API
	OctopusRESTAPIBase = "https://api.octopus.energy/v1"

	// SolcastAPIBase is the base URL for the Solcast rooftop-site API
	SolcastAPIBase = "https://api.solcast.com.au"
)

const (
	// SlotMinutes is the pricing/yield interval length
	SlotMinutes = 30

	// SlotsPerDay is the number of half-hourly slots in a full pricing grid
	SlotsPerDay = 48

	// MaxAnalysisDays is the longest trailing window of daily prices the
	// unit-rates endpoint is asked for, and the clamp applied to aggregation
	MaxAnalysisDays = 31

	// DefaultAnalysisDays is the trailing window used when none is configured
	DefaultAnalysisDays = 7
)

const (
	// ProductDirectoryTTL is how long the products directory is cached;
	// product codes change rarely
	ProductDirectoryTTL = 24 * time.Hour

	// ProductDetailTTL is how long a single product's regional tariff
	// tables are cached
	ProductDetailTTL = 6 * time.Hour
)

// GSPRegions maps Grid Supply Point codes to distribution area names
var GSPRegions = map[string]string{
	"_A": "Eastern England",
	"_B": "East Midlands",
	"_C": "London",
	"_D": "Merseyside and Northern Wales",
	"_E": "West Midlands",
	"_F": "North Eastern England",
	"_G": "North Western England",
	"_H": "Southern England",
	"_J": "South Eastern England",
	"_K": "Southern Wales",
	"_L": "South Western England",
	"_M": "Yorkshire",
	"_N": "Southern Scotland",
	"_P": "Northern Scotland",
}
