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
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PeriodOverride is a partial period definition from the config file.
// Empty fields leave the default (or previously set) value unchanged.
type PeriodOverride struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// Config holds the application configuration. It is built once and passed
// down explicitly; nothing reads ambient globals.
type Config struct {
	// Octopus Energy credentials and product selection
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Product string `yaml:"product"` // product code or unique prefix
	GSP     string `yaml:"gsp"`     // region code, e.g. _H

	// Meter identifiers. The import MPAN also serves region discovery when
	// gsp is unset.
	ElectricityMPAN   string `yaml:"electricity_mpan"`
	ElectricitySerial string `yaml:"electricity_serial"`
	ExportMPAN        string `yaml:"export_mpan"`
	ExportSerial      string `yaml:"export_serial"`
	GasMPRN           string `yaml:"gas_mprn"`
	GasSerial         string `yaml:"gas_serial"`

	// Solcast yield settings
	SolcastAPIKey  string   `yaml:"solcast_api_key"`
	SolcastBaseURL string   `yaml:"solcast_base_url"`
	SolcastSites   []string `yaml:"solcast_sites"`

	// Analysis settings
	AnalysisDays   int     `yaml:"analysis_days"`
	Calibration    float64 `yaml:"calibration"`     // presentation-time yield multiplier
	YieldThreshold float64 `yaml:"yield_threshold"` // kWh/day marker line, 0 disables

	// Tracked period overrides, keyed by period name
	Periods map[string]PeriodOverride `yaml:"periods"`

	// Storage
	StoragePath string `yaml:"storage_path"`

	// Debugging
	Debug bool `yaml:"debug"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		AnalysisDays: DefaultAnalysisDays,
		Calibration:  1.0,
		StoragePath:  getDefaultStoragePath(),
		Debug:        false,
	}

	// If no path provided, return defaults with env var overrides
	if path == "" {
		config.applyEnvironmentVariables()
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentVariables()

	return config, nil
}

// getDefaultStoragePath returns the default storage path
func getDefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".octotariff"
	}
	return filepath.Join(home, ".config", "octotariff")
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("OCTOPUS_API_KEY"); val != "" {
		c.APIKey = val
	}
	if val := os.Getenv("OCTOPUS_PRODUCT"); val != "" {
		c.Product = val
	}
	if val := os.Getenv("OCTOPUS_GSP"); val != "" {
		c.GSP = val
	}
	if val := os.Getenv("OCTOPUS_ELECTRICITY_MPAN"); val != "" {
		c.ElectricityMPAN = val
	}
	if val := os.Getenv("OCTOPUS_ELECTRICITY_SERIAL"); val != "" {
		c.ElectricitySerial = val
	}
	if val := os.Getenv("SOLCAST_API_KEY"); val != "" {
		c.SolcastAPIKey = val
	}
	if val := os.Getenv("SOLCAST_SITES"); val != "" {
		c.SolcastSites = strings.Split(val, ",")
	}
	if val := os.Getenv("OCTOTARIFF_STORAGE_PATH"); val != "" {
		c.StoragePath = val
	}
	if val := os.Getenv("OCTOTARIFF_CALIBRATION"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Calibration = f
		}
	}
	if val := os.Getenv("OCTOTARIFF_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Region returns the configured GSP code, failing fast on a missing or
// unknown region rather than letting an empty code reach the tariff tables
func (c *Config) Region() (string, error) {
	if c.GSP == "" {
		return "", &ConfigError{Field: "gsp", Message: "region is not set (set gsp or electricity_mpan for discovery)"}
	}
	if _, ok := GSPRegions[c.GSP]; !ok {
		return "", &ConfigError{Field: "gsp", Message: fmt.Sprintf("unknown region code %q", c.GSP)}
	}
	return c.GSP, nil
}

// PeriodTable builds the tracked-period table: defaults amended by any
// configured overrides, in sorted name order for deterministic registration
// of new periods
func (c *Config) PeriodTable() (*PeriodTable, error) {
	table := DefaultPeriods()

	names := make([]string, 0, len(c.Periods))
	for name := range c.Periods {
		names = append(names, name)
	}
	// map iteration order is random; keep registration stable
	sort.Strings(names)

	for _, name := range names {
		override := c.Periods[name]
		var patch PeriodPatch
		if override.Start != "" {
			t, err := ParseTimeOfDay(override.Start)
			if err != nil {
				return nil, &ConfigError{Field: "periods." + name + ".start", Message: err.Error()}
			}
			patch.Start = &t
		}
		if override.End != "" {
			t, err := ParseTimeOfDay(override.End)
			if err != nil {
				return nil, &ConfigError{Field: "periods." + name + ".end", Message: err.Error()}
			}
			patch.End = &t
		}
		if override.Label != "" {
			label := override.Label
			patch.Label = &label
		}
		if override.Color != "" {
			color := override.Color
			patch.Color = &color
		}
		table.Set(name, patch)
	}

	return table, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	if c.APIKey == "" {
		errors = append(errors, "api_key is required")
	} else if len(c.APIKey) < 20 {
		errors = append(errors, "api_key appears to be invalid (too short)")
	}

	if c.Product == "" {
		errors = append(errors, "product is required")
	}

	if c.GSP == "" && c.ElectricityMPAN == "" {
		errors = append(errors, "either gsp or electricity_mpan is required to resolve regional pricing")
	} else if c.GSP != "" {
		if _, ok := GSPRegions[c.GSP]; !ok {
			errors = append(errors, fmt.Sprintf("gsp %q is not a known region code", c.GSP))
		}
	}

	if c.AnalysisDays < 1 || c.AnalysisDays > MaxAnalysisDays {
		errors = append(errors, fmt.Sprintf("analysis_days must be between 1 and %d", MaxAnalysisDays))
	}

	if c.Calibration <= 0 {
		errors = append(errors, "calibration must be greater than 0")
	}

	if len(c.SolcastSites) > 0 && c.SolcastAPIKey == "" {
		errors = append(errors, "solcast_api_key is required when solcast_sites are configured")
	}

	if c.StoragePath == "" {
		c.StoragePath = getDefaultStoragePath()
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
