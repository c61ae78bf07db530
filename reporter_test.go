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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderReport(t *testing.T, data *ReportData) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.md")
	reporter := NewReporter(NewLogger(false))
	require.NoError(t, reporter.GenerateReport(data, path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func testProduct() *ProductInfo {
	return &ProductInfo{
		Code:           "AGILE-FLEX-22-11-25",
		DisplayName:    "Agile Octopus",
		FullName:       "Agile Octopus November 2022 v1",
		Kind:           KindImport,
		GSP:            "_H",
		TariffCode:     "E-1R-AGILE-FLEX-22-11-25-H",
		StandingCharge: 45.0,
		UnitRate:       28.5,
		AvailableFrom:  "2022-11-25T00:00:00Z",
	}
}

func TestGenerateReportPeriodAverages(t *testing.T) {
	content := renderReport(t, &ReportData{
		Product: testProduct(),
		Rates: &RateSummary{
			Days:       2,
			Dates:      []string{"2023-05-02", "2023-05-01"},
			HalfHourly: true,
			PeriodAverages: map[string]float64{
				"night": 11.2,
				"peak":  32.7,
			},
		},
		Periods:     DefaultPeriods(),
		Calibration: 1.0,
		FetchedAt:   time.Now(),
	})

	assert.Contains(t, content, "## Product: AGILE-FLEX-22-11-25")
	assert.Contains(t, content, "Southern England")
	assert.Contains(t, content, "Window: 2 day(s), 2023-05-01 to 2023-05-02")
	assert.Contains(t, content, "| Night off peak | 11.20 p/kWh | 0130 to 0459 |")
	assert.Contains(t, content, "| Evening peak | 32.70 p/kWh | 1600 to 1859 |")
	// Periods without an average are left out, not rendered as zero
	assert.NotContains(t, content, "Morning peak")
}

func TestGenerateReportFlatRate(t *testing.T) {
	content := renderReport(t, &ReportData{
		Product: testProduct(),
		Rates: &RateSummary{
			Days:       2,
			Dates:      []string{"2023-05-02", "2023-05-01"},
			HalfHourly: false,
		},
		Periods:     DefaultPeriods(),
		Calibration: 1.0,
	})

	assert.Contains(t, content, "Half-hourly pricing not available")
	assert.NotContains(t, content, "| Period |")
}

func TestGenerateReportYield(t *testing.T) {
	content := renderReport(t, &ReportData{
		Product: testProduct(),
		Yield: &YieldSummary{
			Days: []DailyYield{
				{Date: "2023-06-02", TotalKWh: 10.0},
				{Date: "2023-06-03", TotalKWh: 2.0, Forecast: true},
			},
			TotalKWh:   12.0,
			AverageKWh: 6.0,
		},
		Periods:        DefaultPeriods(),
		Calibration:    0.5,
		Threshold:      3.0,
		YieldChartPath: "/tmp/yield.png",
	})

	// Calibration halves every figure; the forecast day falls below threshold
	assert.Contains(t, content, "| 2023-06-02 | 5.00 kWh |  |")
	assert.Contains(t, content, "| 2023-06-03 | 1.00 kWh | forecast, below threshold |")
	assert.Contains(t, content, "**Total:** 6.00 kWh over 2 day(s)")
	assert.Contains(t, content, "**Average:** 3.00 kWh/day")
	assert.Contains(t, content, "calibration factor 0.500")
	assert.Contains(t, content, "![Daily yield](/tmp/yield.png)")
}

func TestFormatPence(t *testing.T) {
	assert.Equal(t, "12.50p/kWh", FormatPence(12.5))
}
