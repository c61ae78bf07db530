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
	"flag"
	"fmt"
	"os"
)

func main() {
	// Define command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	apiKey := flag.String("key", "", "Octopus Energy API Key (overrides config)")
	product := flag.String("product", "", "Product code or unique prefix (overrides config)")
	days := flag.Int("days", 0, "Trailing window of days to average (overrides config)")
	site := flag.String("site", "", "Solcast site ID (overrides config)")
	outputPath := flag.String("output", "", "Output file for report (default: stdout)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("octotariff %s\n", GetVersion())
		os.Exit(0)
	}

	// Initialize logger
	logger := NewLogger(*debug)
	logger.Info("Starting octotariff", "version", GetVersion())

	// Check for updates (non-blocking)
	go CheckForUpdates(logger)

	// Load configuration
	logger.Info("Loading configuration", "config_file", *configPath)
	config, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Override with command-line flags
	if *apiKey != "" {
		config.APIKey = *apiKey
	}
	if *product != "" {
		config.Product = *product
	}
	if *days > 0 {
		config.AnalysisDays = *days
	}
	if *site != "" {
		config.SolcastSites = []string{*site}
	}
	if *debug {
		config.Debug = true
		logger = NewLogger(true)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Configuration loaded successfully")

	// Build the tracked-period table from defaults plus overrides
	periods, err := config.PeriodTable()
	if err != nil {
		logger.Error("Failed to build period table", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	logger.Info("Initializing storage", "path", config.StoragePath)
	storage, err := NewStorage(config.StoragePath, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	// Create API clients
	logger.Info("Creating API clients")
	client := NewOctopusClient(config.BaseURL, config.APIKey, logger)
	solcast := NewSolcastClient(config.SolcastBaseURL, config.SolcastAPIKey, logger)

	// Fetch all data (snapshots are preferred over refetching)
	logger.Info("Collecting data")
	collector := NewCollector(client, solcast, config, storage, logger)
	data, err := collector.CollectAll()
	if err != nil {
		logger.Error("Failed to collect data", "error", err)
		os.Exit(1)
	}

	report := &ReportData{
		Product:     data.Product,
		Periods:     periods,
		Calibration: config.Calibration,
		Threshold:   config.YieldThreshold,
		FetchedAt:   data.FetchedAt,
	}

	chartGen := NewChartGenerator()

	// Aggregate half-hourly pricing
	if len(data.Rates) > 0 {
		logger.Info("Aggregating unit rates", "samples", len(data.Rates), "days", config.AnalysisDays)
		rateAgg := NewRateAggregator(periods, logger)
		rates, err := rateAgg.Aggregate(data.Rates, config.AnalysisDays)
		if err != nil {
			logger.Error("Failed to aggregate unit rates", "error", err)
			os.Exit(1)
		}
		report.Rates = rates

		if chart, err := chartGen.GeneratePriceChart(rates, periods, data.Product); err != nil {
			logger.Warn("Failed to render price chart", "error", err)
		} else if path, err := storage.SaveReportArtifact("prices.png", chart); err != nil {
			logger.Warn("Failed to save price chart", "error", err)
		} else {
			report.PriceChartPath = path
			logger.Info("Price chart saved", "path", path)
		}
	}

	// Aggregate solar yield
	if len(data.Forecasts) > 0 || len(data.EstimatedActs) > 0 {
		logger.Info("Aggregating yield",
			"forecasts", len(data.Forecasts),
			"estimated_actuals", len(data.EstimatedActs),
		)
		yieldAgg := NewYieldAggregator(logger)
		yield, err := yieldAgg.Aggregate(data.Forecasts, data.EstimatedActs, config.AnalysisDays)
		if err != nil {
			logger.Error("Failed to aggregate yield", "error", err)
			os.Exit(1)
		}
		report.Yield = yield

		if chart, err := chartGen.GenerateYieldChart(yield, config.Calibration, config.YieldThreshold); err != nil {
			logger.Warn("Failed to render yield chart", "error", err)
		} else if path, err := storage.SaveReportArtifact("yield.png", chart); err != nil {
			logger.Warn("Failed to save yield chart", "error", err)
		} else {
			report.YieldChartPath = path
			logger.Info("Yield chart saved", "path", path)
		}
	}

	// Generate report
	logger.Info("Generating report")
	reporter := NewReporter(logger)
	if err := reporter.GenerateReport(report, *outputPath); err != nil {
		logger.Error("Failed to generate report", "error", err)
		os.Exit(1)
	}

	logger.Info("Analysis completed successfully")
}
