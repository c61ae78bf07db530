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
	"time"
)

// PriceSample is one half-hourly unit price for one calendar date
type PriceSample struct {
	Time  TimeOfDay `json:"time"`
	Date  string    `json:"date"` // YYYY-MM-DD
	Value float64   `json:"value"`
}

// SlotStatistics summarises one time-of-day slot across the selected window
// of calendar dates
type SlotStatistics struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// RateSummary is the aggregated view of a product's half-hourly pricing
type RateSummary struct {
	Days           int                          `json:"days"`
	Dates          []string                     `json:"dates"` // most recent first
	Slots          map[TimeOfDay]SlotStatistics `json:"slots"`
	SlotOrder      []TimeOfDay                  `json:"slotOrder"`
	HalfHourly     bool                         `json:"halfHourly"`
	PeriodAverages map[string]float64           `json:"periodAverages,omitempty"`
}

// YieldSample is one half-hourly yield estimate for one site. Forecast marks
// forward-looking samples as opposed to retrospective estimated actuals.
type YieldSample struct {
	Timestamp time.Time `json:"timestamp"`
	SiteID    string    `json:"siteId"`
	PowerKW   float64   `json:"powerKw"`
	Forecast  bool      `json:"forecast"`
}

// DailyYield is the deduplicated yield total for one calendar date.
// TotalKWh is the raw, uncalibrated total.
type DailyYield struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	TotalKWh float64 `json:"totalKwh"`
	Forecast bool    `json:"forecast"`
}

// YieldSummary is the aggregated daily yield over the trimmed window.
// Totals are raw; the calibration multiplier applies at presentation time
// only, via the Calibrated* accessors.
type YieldSummary struct {
	Days       []DailyYield `json:"days"`
	TotalKWh   float64      `json:"totalKwh"`
	AverageKWh float64      `json:"averageKwh"`
}

// Calibrated scales a day's raw total by the presentation multiplier
func (d DailyYield) Calibrated(calibration float64) float64 {
	return d.TotalKWh * calibration
}

// CalibratedTotal scales the raw window total by the presentation multiplier
func (s *YieldSummary) CalibratedTotal(calibration float64) float64 {
	return s.TotalKWh * calibration
}

// CalibratedAverage scales the raw run average by the presentation multiplier
func (s *YieldSummary) CalibratedAverage(calibration float64) float64 {
	return s.AverageKWh * calibration
}

// CollectedData holds everything fetched (or loaded from snapshots) for one run
type CollectedData struct {
	Product       *ProductInfo  `json:"product"`
	Rates         []PriceSample `json:"rates"`
	Forecasts     []YieldSample `json:"forecasts"`
	EstimatedActs []YieldSample `json:"estimatedActuals"`
	FetchedAt     time.Time     `json:"fetchedAt"`
}

// REST response structures

// ProductsResponse represents the paged products directory response
type ProductsResponse struct {
	Count   int              `json:"count"`
	Next    string           `json:"next"`
	Results []ProductListing `json:"results"`
}

// ProductListing is one entry in the products directory
type ProductListing struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
	Brand       string `json:"brand"`
}

// RegionTariff carries the rates offered for one payment method in one region
type RegionTariff struct {
	Code                   string   `json:"code"`
	StandingChargeIncVAT   *float64 `json:"standing_charge_inc_vat"`
	StandardUnitRateIncVAT *float64 `json:"standard_unit_rate_inc_vat"`
}

// RegionTariffTable maps payment methods to rates for one GSP region
type RegionTariffTable struct {
	DirectDebitMonthly *RegionTariff `json:"direct_debit_monthly"`
}

// ProductDetailResponse represents a single product's detail response,
// including per-region tariff tables keyed by GSP code
type ProductDetailResponse struct {
	Code          string  `json:"code"`
	DisplayName   string  `json:"display_name"`
	FullName      string  `json:"full_name"`
	Description   string  `json:"description"`
	IsVariable    bool    `json:"is_variable"`
	IsGreen       bool    `json:"is_green"`
	IsTracker     bool    `json:"is_tracker"`
	Term          *int    `json:"term"`
	AvailableFrom string  `json:"available_from"`
	AvailableTo   *string `json:"available_to"`

	SingleRegisterElectricityTariffs map[string]RegionTariffTable `json:"single_register_electricity_tariffs"`
	SingleRegisterGasTariffs         map[string]RegionTariffTable `json:"single_register_gas_tariffs"`
}

// UnitRatesResponse represents the standard-unit-rates response. ValueIncVAT
// may be null upstream; nulls are read as zero when converting to samples.
type UnitRatesResponse struct {
	Count   int    `json:"count"`
	Next    string `json:"next"`
	Results []struct {
		ValidFrom   string   `json:"valid_from"`
		ValidTo     *string  `json:"valid_to"`
		ValueExcVAT *float64 `json:"value_exc_vat"`
		ValueIncVAT *float64 `json:"value_inc_vat"`
	} `json:"results"`
}

// MeterPointResponse represents the meter-point lookup used to discover the
// GSP region for an MPAN
type MeterPointResponse struct {
	GSP          string `json:"gsp"`
	MPAN         string `json:"mpan"`
	ProfileClass int    `json:"profile_class"`
}

// SolcastRecord is one half-hourly yield record from Solcast. PVEstimate is
// the average power over the interval in kW and may be null upstream.
type SolcastRecord struct {
	PVEstimate *float64 `json:"pv_estimate"`
	PeriodEnd  string   `json:"period_end"`
	Period     string   `json:"period"`
}

// SolcastForecastResponse represents the rooftop-site forecasts response
type SolcastForecastResponse struct {
	Forecasts []SolcastRecord `json:"forecasts"`
}

// SolcastEstimatedActualsResponse represents the rooftop-site estimated
// actuals response
type SolcastEstimatedActualsResponse struct {
	EstimatedActuals []SolcastRecord `json:"estimated_actuals"`
}
