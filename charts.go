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

	charts "github.com/vicanso/go-charts/v2"
)

// ChartGenerator renders aggregated pricing and yield data as PNG charts
type ChartGenerator struct {
	theme string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme: "light",
	}
}

// GeneratePriceChart creates a line chart of the average half-hourly price
// across the window, with min/max bands and one flat line per tracked period
// at its period average
func (cg *ChartGenerator) GeneratePriceChart(summary *RateSummary, periods *PeriodTable, product *ProductInfo) ([]byte, error) {
	if len(summary.SlotOrder) == 0 {
		return nil, &DataError{DataType: "rates", Message: "no slot statistics to chart"}
	}

	var labels []string
	var avgValues, minValues, maxValues []float64
	for _, t := range summary.SlotOrder {
		stats := summary.Slots[t]
		labels = append(labels, t.String())
		avgValues = append(avgValues, stats.Average)
		minValues = append(minValues, stats.Min)
		maxValues = append(maxValues, stats.Max)
	}

	values := [][]float64{avgValues}
	legendLabels := []string{"Average 30 minute price"}

	if summary.Days > 1 {
		values = append(values, minValues, maxValues)
		legendLabels = append(legendLabels, "Minimum 30 minute price", "Maximum 30 minute price")
	}

	if summary.HalfHourly {
		for _, name := range periods.Names() {
			avg, ok := summary.PeriodAverages[name]
			if !ok {
				continue
			}
			def, _ := periods.Get(name)
			flat := make([]float64, len(labels))
			for i := range flat {
				flat[i] = avg
			}
			values = append(values, flat)
			legendLabels = append(legendLabels, def.Label+" average")
		}
	}

	direction := "import prices inc VAT"
	if product.Kind == KindExport {
		direction = "export prices"
	}
	title := fmt.Sprintf("%s: %s in p/kWh over %d days", product.FullName, direction, summary.Days)

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc(legendLabels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render price chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return buf, nil
}

// GenerateYieldChart creates a bar chart of daily yield over the trimmed
// window. The calibration multiplier applies here, at render time; the
// summary's stored totals stay raw. A positive threshold adds a marker
// series.
func (cg *ChartGenerator) GenerateYieldChart(summary *YieldSummary, calibration, threshold float64) ([]byte, error) {
	if len(summary.Days) == 0 {
		return nil, &DataError{DataType: "yield", Message: "no daily yield to chart"}
	}

	var labels []string
	var dailyValues []float64
	for _, day := range summary.Days {
		label := day.Date
		if day.Forecast {
			label += "*"
		}
		labels = append(labels, label)
		dailyValues = append(dailyValues, day.Calibrated(calibration))
	}

	values := [][]float64{dailyValues}
	legendLabels := []string{"Daily yield (kWh)"}

	averageLine := make([]float64, len(labels))
	for i := range averageLine {
		averageLine[i] = summary.CalibratedAverage(calibration)
	}
	values = append(values, averageLine)
	legendLabels = append(legendLabels, "Run average (kWh)")

	if threshold > 0 {
		thresholdLine := make([]float64, len(labels))
		for i := range thresholdLine {
			thresholdLine[i] = threshold
		}
		values = append(values, thresholdLine)
		legendLabels = append(legendLabels, "Threshold (kWh)")
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc("Daily solar yield (* = forecast)"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc(legendLabels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render yield chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return buf, nil
}

// getTheme returns the chart theme name
func (cg *ChartGenerator) getTheme() string {
	return cg.theme
}
