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
	"sort"
)

// RateAggregator converts raw half-hourly price samples into per-slot
// statistics and named-period averages over a trailing window of calendar
// dates
type RateAggregator struct {
	periods *PeriodTable
	logger  *Logger
}

// NewRateAggregator creates a rate aggregator using the given period table
func NewRateAggregator(periods *PeriodTable, logger *Logger) *RateAggregator {
	return &RateAggregator{
		periods: periods,
		logger:  logger.WithComponent("rates"),
	}
}

// Aggregate buckets samples by time slot and calendar date, selects the most
// recent days dates (clamped to 1..31), and computes average/min/max per slot
// plus the mean slot-average for each tracked period.
//
// A full 48-slot grid means the product has standard half-hourly variable
// pricing. Fewer distinct slots means a flat-rate product: period averaging is
// skipped entirely and HalfHourly is false rather than averaging a partial
// grid.
func (a *RateAggregator) Aggregate(samples []PriceSample, days int) (*RateSummary, error) {
	if days > MaxAnalysisDays {
		days = MaxAnalysisDays
	}
	if days < 1 {
		days = 1
	}

	summary := &RateSummary{
		Days:  days,
		Slots: make(map[TimeOfDay]SlotStatistics),
	}
	if len(samples) == 0 {
		return summary, nil
	}

	// samples[time][date] = value
	table := make(map[TimeOfDay]map[string]float64)
	dateSet := make(map[string]struct{})
	for _, s := range samples {
		byDate, ok := table[s.Time]
		if !ok {
			byDate = make(map[string]float64)
			table[s.Time] = byDate
		}
		byDate[s.Date] = s.Value
		dateSet[s.Date] = struct{}{}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > days {
		dates = dates[:days]
	}
	summary.Dates = dates

	slots := make([]TimeOfDay, 0, len(table))
	for t := range table {
		slots = append(slots, t)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	for _, t := range slots {
		var stats SlotStatistics
		for _, d := range dates {
			v, ok := table[t][d]
			if !ok {
				a.logger.LogMissingSlot(d, t)
				continue
			}
			if stats.Count == 0 || v < stats.Min {
				stats.Min = v
			}
			if stats.Count == 0 || v > stats.Max {
				stats.Max = v
			}
			stats.Average += v
			stats.Count++
		}
		if stats.Count == 0 {
			// No selected date holds a value for this slot; exclude it
			continue
		}
		stats.Average /= float64(stats.Count)
		summary.Slots[t] = stats
		summary.SlotOrder = append(summary.SlotOrder, t)
	}

	summary.HalfHourly = len(summary.Slots) == SlotsPerDay
	if !summary.HalfHourly {
		a.logger.Info("Product is not half-hourly priced, skipping period averages",
			"slots", len(summary.Slots),
		)
		return summary, nil
	}

	averages, err := a.periodAverages(summary)
	if err != nil {
		return nil, err
	}
	summary.PeriodAverages = averages

	a.logger.LogAggregationStage("rates")
	return summary, nil
}

// periodAverages computes the mean of slot averages for each tracked period.
// ExpandSlots is inclusive of the period end, but the averaging window must
// match the exclusive display span, so the final slot is dropped. Slots
// missing from the statistics map are skipped, not averaged as zero.
func (a *RateAggregator) periodAverages(summary *RateSummary) (map[string]float64, error) {
	averages := make(map[string]float64)
	for _, name := range a.periods.Names() {
		slots, err := a.periods.ExpandSlots(name)
		if err != nil {
			return nil, err
		}
		if len(slots) > 1 {
			slots = slots[:len(slots)-1]
		}

		sum := 0.0
		count := 0
		for _, t := range slots {
			stats, ok := summary.Slots[t]
			if !ok {
				a.logger.Debug("Period slot has no statistics", "period", name, "slot", t.String())
				continue
			}
			sum += stats.Average
			count++
		}
		if count == 0 {
			return nil, &EmptyWindowError{What: "period " + name}
		}
		averages[name] = sum / float64(count)
	}
	return averages, nil
}
