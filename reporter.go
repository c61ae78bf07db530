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
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// ReportData bundles everything the report renders
type ReportData struct {
	Product     *ProductInfo
	Rates       *RateSummary
	Yield       *YieldSummary
	Periods     *PeriodTable
	Calibration float64
	Threshold   float64
	FetchedAt   time.Time

	// Rendered chart files, embedded when set
	PriceChartPath string
	YieldChartPath string
}

// Reporter generates markdown reports from aggregated results
type Reporter struct {
	logger *Logger
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// GenerateReport creates a markdown report
func (r *Reporter) GenerateReport(data *ReportData, outputPath string) error {
	r.logger.Info("Generating report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.writeHeader(writer, data)
	r.writeProduct(writer, data.Product)
	if data.Rates != nil {
		r.writePeriodAverages(writer, data)
	}
	if data.Yield != nil {
		r.writeYield(writer, data)
	}
	r.writeFooter(writer)

	if outputPath != "" {
		r.logger.Info("Report saved", "path", outputPath)
	}

	return nil
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, data *ReportData) {
	fmt.Fprintf(w, "# Octopus Energy Tariff Analysis\n\n")
	fmt.Fprintf(w, "**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	if !data.FetchedAt.IsZero() {
		fmt.Fprintf(w, "**Data fetched:** %s\n\n", humanize.Time(data.FetchedAt))
	}
	fmt.Fprintf(w, "**octotariff version:** %s\n\n", GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeProduct writes the product details section
func (r *Reporter) writeProduct(w io.Writer, product *ProductInfo) {
	fmt.Fprintf(w, "## Product: %s\n\n", product.Code)
	fmt.Fprintf(w, "| | |\n")
	fmt.Fprintf(w, "|---|---|\n")
	fmt.Fprintf(w, "| Display name | %s |\n", product.DisplayName)
	fmt.Fprintf(w, "| Full name | %s |\n", product.FullName)
	fmt.Fprintf(w, "| Kind | %s |\n", product.Kind)
	fmt.Fprintf(w, "| Region (GSP) | %s (%s) |\n", product.RegionName(), product.GSP)
	fmt.Fprintf(w, "| Available from | %s |\n", product.AvailableFrom)
	if product.AvailableTo != "" {
		fmt.Fprintf(w, "| Available to | %s |\n", product.AvailableTo)
	}
	if product.TermMonths != nil {
		fmt.Fprintf(w, "| Term | %d months |\n", *product.TermMonths)
	}
	if product.TariffCode != "" {
		fmt.Fprintf(w, "| Tariff code | %s |\n", product.TariffCode)
		fmt.Fprintf(w, "| Standing charge | %.2f p/day inc VAT |\n", product.StandingCharge)
		fmt.Fprintf(w, "| Unit rate | %.2f p/kWh inc VAT |\n", product.UnitRate)
	}
	if product.GasTariffCode != "" {
		fmt.Fprintf(w, "| Gas tariff code | %s |\n", product.GasTariffCode)
		fmt.Fprintf(w, "| Gas standing charge | %.2f p/day inc VAT |\n", product.GasStandingCharge)
		fmt.Fprintf(w, "| Gas unit rate | %.2f p/kWh inc VAT |\n", product.GasUnitRate)
	}
	fmt.Fprintf(w, "\n")
}

// writePeriodAverages writes the per-period averaged prices, or notes that
// period pricing is unavailable for flat-rate products
func (r *Reporter) writePeriodAverages(w io.Writer, data *ReportData) {
	summary := data.Rates

	fmt.Fprintf(w, "## Period Averages\n\n")

	if len(summary.Dates) > 0 {
		fmt.Fprintf(w, "Window: %d day(s), %s to %s\n\n",
			len(summary.Dates),
			summary.Dates[len(summary.Dates)-1],
			summary.Dates[0],
		)
	}

	if !summary.HalfHourly {
		fmt.Fprintf(w, "Half-hourly pricing not available for this product (flat rate); period averages are not applicable.\n\n")
		return
	}

	fmt.Fprintf(w, "| Period | Average | Span |\n")
	fmt.Fprintf(w, "|--------|---------|------|\n")
	for _, name := range data.Periods.Names() {
		avg, ok := summary.PeriodAverages[name]
		if !ok {
			continue
		}
		def, _ := data.Periods.Get(name)
		start, end, err := data.Periods.Span(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "| %s | %.2f p/kWh | %s to %s |\n", def.Label, avg, start, end)
	}
	fmt.Fprintf(w, "\n")

	if data.PriceChartPath != "" {
		fmt.Fprintf(w, "![Half-hourly prices](%s)\n\n", data.PriceChartPath)
	}
}

// writeYield writes the daily yield section with calibration applied at
// presentation time
func (r *Reporter) writeYield(w io.Writer, data *ReportData) {
	summary := data.Yield

	fmt.Fprintf(w, "## Daily Solar Yield\n\n")

	fmt.Fprintf(w, "| Date | Yield | |\n")
	fmt.Fprintf(w, "|------|-------|---|\n")
	for _, day := range summary.Days {
		notes := ""
		if day.Forecast {
			notes = "forecast"
		}
		if data.Threshold > 0 && day.Calibrated(data.Calibration) < data.Threshold {
			if notes != "" {
				notes += ", "
			}
			notes += "below threshold"
		}
		fmt.Fprintf(w, "| %s | %.2f kWh | %s |\n", day.Date, day.Calibrated(data.Calibration), notes)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "**Total:** %.2f kWh over %d day(s)\n\n",
		summary.CalibratedTotal(data.Calibration), len(summary.Days))
	fmt.Fprintf(w, "**Average:** %.2f kWh/day\n\n", summary.CalibratedAverage(data.Calibration))
	if data.Calibration != 1.0 {
		fmt.Fprintf(w, "_Values scaled by calibration factor %.3f at presentation time._\n\n", data.Calibration)
	}

	if data.YieldChartPath != "" {
		fmt.Fprintf(w, "![Daily yield](%s)\n\n", data.YieldChartPath)
	}
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "_Report generated by octotariff %s_\n", GetVersion())
}

// FormatPence formats a unit rate
func FormatPence(value float64) string {
	return fmt.Sprintf("%.2fp/kWh", value)
}
