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
	"sort"
)

// YieldAggregator converts raw half-hourly per-site yield samples into
// deduplicated daily totals
type YieldAggregator struct {
	logger *Logger
}

// NewYieldAggregator creates a yield aggregator
func NewYieldAggregator(logger *Logger) *YieldAggregator {
	return &YieldAggregator{
		logger: logger.WithComponent("yield"),
	}
}

// Aggregate merges forecast and estimated-actual samples into per-date kWh
// totals.
//
// The two sets overlap around "today": a (site, slot) pair appearing in both
// contributes to a date's total once only. Each unique half-hourly kW sample
// converts to kWh by halving. The earliest and latest dates of the merged
// range are always dropped, since they cover partial days at the forecast and
// estimate window boundaries. If days further restricts the window, dates are
// trimmed symmetrically from both ends until the requested count remains.
//
// Totals are raw; the calibration multiplier applies only through the
// summary's Calibrated* accessors.
func (a *YieldAggregator) Aggregate(forecasts, actuals []YieldSample, days int) (*YieldSummary, error) {
	totals := make(map[string]*DailyYield)
	seen := make(map[string]struct{})

	ingest := func(samples []YieldSample) {
		for _, s := range samples {
			date := s.Timestamp.Format("2006-01-02")
			day, ok := totals[date]
			if !ok {
				day = &DailyYield{Date: date}
				totals[date] = day
			}
			if s.Forecast {
				day.Forecast = true
			}
			key := fmt.Sprintf("%s/%s@%s", date, s.SiteID, TimeOfDayFromTime(s.Timestamp))
			if _, dup := seen[key]; dup {
				a.logger.Debug("Duplicate yield slot", "date", date, "site", s.SiteID,
					"slot", TimeOfDayFromTime(s.Timestamp).String())
				continue
			}
			seen[key] = struct{}{}
			day.TotalKWh += s.PowerKW / 2
		}
	}
	ingest(actuals)
	ingest(forecasts)

	dates := make([]string, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// Boundary days are inaccurate by construction; drop both unconditionally
	if len(dates) <= 2 {
		dates = nil
	} else {
		dates = dates[1 : len(dates)-1]
	}

	if days > 0 {
		for len(dates) > days {
			dates = dates[1:]
			if len(dates) > days {
				dates = dates[:len(dates)-1]
			}
		}
	}

	summary := &YieldSummary{}
	for _, d := range dates {
		summary.Days = append(summary.Days, *totals[d])
		summary.TotalKWh += totals[d].TotalKWh
	}
	if len(summary.Days) == 0 {
		return nil, &EmptyWindowError{What: "daily yield"}
	}
	summary.AverageKWh = summary.TotalKWh / float64(len(summary.Days))

	a.logger.Info("Yield aggregated",
		"days", len(summary.Days),
		"total_kwh", summary.TotalKWh,
		"average_kwh", summary.AverageKWh,
	)
	return summary, nil
}
