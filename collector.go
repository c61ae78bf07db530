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
	"time"
)

// Collector orchestrates data collection from the pricing and yield APIs,
// going through the TTL cache for slow-changing payloads and raw snapshots
// for replayable ones
type Collector struct {
	client  *OctopusClient
	solcast *SolcastClient
	config  *Config
	storage *Storage
	logger  *Logger
}

// NewCollector creates a new data collector
func NewCollector(client *OctopusClient, solcast *SolcastClient, config *Config, storage *Storage, logger *Logger) *Collector {
	return &Collector{
		client:  client,
		solcast: solcast,
		config:  config,
		storage: storage,
		logger:  logger,
	}
}

// CollectAll fetches product pricing and, when Solcast sites are configured,
// yield data
func (c *Collector) CollectAll() (*CollectedData, error) {
	c.logger.Info("Starting data collection")

	data := &CollectedData{
		FetchedAt: time.Now(),
	}

	product, err := c.CollectProduct(c.config.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to collect product: %w", err)
	}
	data.Product = product

	if product.HasTimedPricing() {
		rates, err := c.CollectRates(product, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to collect unit rates: %w", err)
		}
		data.Rates = rates
	} else {
		c.logger.Info("Product has no electricity tariff, skipping unit rates", "code", product.Code)
	}

	if len(c.config.SolcastSites) > 0 {
		forecasts, actuals, err := c.CollectYield()
		if err != nil {
			// Yield data is supplementary; pricing output still stands
			c.logger.Warn("Failed to collect yield data", "error", err)
		} else {
			data.Forecasts = forecasts
			data.EstimatedActs = actuals
		}
	} else {
		c.logger.Info("Skipping yield collection (no Solcast sites configured)")
	}

	c.logger.Info("Data collection completed successfully")
	return data, nil
}

// CollectProduct resolves a partial product code against the (cached)
// directory and builds the regional product view
func (c *Collector) CollectProduct(prefix string) (*ProductInfo, error) {
	directory, err := c.fetchProductsCached()
	if err != nil {
		return nil, err
	}

	code, err := ResolveProductCode(prefix, directory)
	if err != nil {
		return nil, err
	}

	detail, err := c.fetchProductDetailCached(code)
	if err != nil {
		return nil, err
	}

	gsp, err := c.resolveRegion()
	if err != nil {
		return nil, err
	}

	return NewProductInfo(detail, gsp)
}

// CollectRates loads the half-hourly unit rates for the trailing 31 days,
// preferring an existing snapshot over a fresh fetch. The window ends at
// 23:00 on the given day.
func (c *Collector) CollectRates(product *ProductInfo, to time.Time) ([]PriceSample, error) {
	periodTo := time.Date(to.Year(), to.Month(), to.Day(), 23, 0, 0, 0, to.Location())
	periodFrom := periodTo.AddDate(0, 0, -MaxAnalysisDays)

	name := fmt.Sprintf("rates_%s", strings.ToLower(product.TariffCode))

	var rates UnitRatesResponse
	loaded, err := c.storage.LoadSnapshot(name, &rates)
	if err != nil {
		c.logger.Warn("Failed to load rates snapshot, refetching", "error", err)
		loaded = false
	}

	if !loaded {
		fetched, err := c.client.FetchUnitRates(product.Code, product.TariffCode, periodFrom, periodTo)
		if err != nil {
			return nil, err
		}
		rates = *fetched
		if err := c.storage.SaveSnapshot(name, &rates); err != nil {
			c.logger.Warn("Failed to save rates snapshot", "error", err)
		}
	} else {
		c.logger.Info("Loaded unit rates from snapshot", "tariff", product.TariffCode, "count", len(rates.Results))
	}

	return PriceSamplesFromRates(&rates, c.logger), nil
}

// CollectYield loads forecast and estimated-actual samples for every
// configured site, preferring existing snapshots over fresh fetches.
// Snapshots hold the raw Solcast responses, as the rates path does for unit
// rates; conversion to samples happens after load.
func (c *Collector) CollectYield() ([]YieldSample, []YieldSample, error) {
	var forecasts, actuals []YieldSample

	for _, site := range c.config.SolcastSites {
		fc, err := c.collectSiteForecasts(site)
		if err != nil {
			return nil, nil, err
		}
		forecasts = append(forecasts, fc...)

		ea, err := c.collectSiteEstimatedActuals(site)
		if err != nil {
			return nil, nil, err
		}
		actuals = append(actuals, ea...)
	}

	return forecasts, actuals, nil
}

func (c *Collector) collectSiteForecasts(site string) ([]YieldSample, error) {
	name := fmt.Sprintf("solcast_%s_forecasts", site)

	var resp SolcastForecastResponse
	loaded, err := c.storage.LoadSnapshot(name, &resp)
	if err != nil {
		c.logger.Warn("Failed to load forecast snapshot, refetching", "site", site, "error", err)
		loaded = false
	}

	if !loaded {
		fetched, err := c.solcast.FetchForecasts(site)
		if err != nil {
			return nil, err
		}
		resp = *fetched
		if err := c.storage.SaveSnapshot(name, &resp); err != nil {
			c.logger.Warn("Failed to save forecast snapshot", "site", site, "error", err)
		}
	} else {
		c.logger.Info("Loaded forecasts from snapshot", "site", site, "count", len(resp.Forecasts))
	}

	return YieldSamplesFromForecasts(&resp, site)
}

func (c *Collector) collectSiteEstimatedActuals(site string) ([]YieldSample, error) {
	name := fmt.Sprintf("solcast_%s_estimated_actuals", site)

	var resp SolcastEstimatedActualsResponse
	loaded, err := c.storage.LoadSnapshot(name, &resp)
	if err != nil {
		c.logger.Warn("Failed to load estimated-actuals snapshot, refetching", "site", site, "error", err)
		loaded = false
	}

	if !loaded {
		fetched, err := c.solcast.FetchEstimatedActuals(site)
		if err != nil {
			return nil, err
		}
		resp = *fetched
		if err := c.storage.SaveSnapshot(name, &resp); err != nil {
			c.logger.Warn("Failed to save estimated-actuals snapshot", "site", site, "error", err)
		}
	} else {
		c.logger.Info("Loaded estimated actuals from snapshot", "site", site, "count", len(resp.EstimatedActuals))
	}

	return YieldSamplesFromEstimatedActuals(&resp, site)
}

// fetchProductsCached fetches the products directory through the TTL cache
func (c *Collector) fetchProductsCached() ([]ProductListing, error) {
	var directory []ProductListing
	cached, err := c.storage.LoadCache("product_directory", &directory)
	if err != nil {
		c.logger.Warn("Failed to load product directory from cache", "error", err)
	}

	if !cached {
		directory, err = c.client.FetchProducts()
		if err != nil {
			return nil, err
		}
		if err := c.storage.SaveCache("product_directory", directory, ProductDirectoryTTL); err != nil {
			c.logger.Warn("Failed to cache product directory", "error", err)
		}
	} else {
		c.logger.Debug("Loaded product directory from cache", "count", len(directory))
	}

	return directory, nil
}

// fetchProductDetailCached fetches a product detail through the TTL cache
func (c *Collector) fetchProductDetailCached(code string) (*ProductDetailResponse, error) {
	cacheKey := fmt.Sprintf("product_detail_%s", code)

	var detail *ProductDetailResponse
	cached, err := c.storage.LoadCache(cacheKey, &detail)
	if err != nil {
		c.logger.Warn("Failed to load product detail from cache", "error", err)
	}

	if !cached || detail == nil {
		detail, err = c.client.FetchProductDetail(code)
		if err != nil {
			return nil, err
		}
		if err := c.storage.SaveCache(cacheKey, detail, ProductDetailTTL); err != nil {
			c.logger.Warn("Failed to cache product detail", "error", err)
		}
	} else {
		c.logger.Debug("Loaded product detail from cache", "code", code)
	}

	return detail, nil
}

// resolveRegion returns the configured GSP, or discovers it from the import
// meter point when only an MPAN is configured
func (c *Collector) resolveRegion() (string, error) {
	gsp, err := c.config.Region()
	if err == nil {
		return gsp, nil
	}

	if c.config.ElectricityMPAN == "" {
		return "", err
	}

	cacheKey := fmt.Sprintf("gsp_%s", c.config.ElectricityMPAN)
	var discovered string
	cached, cacheErr := c.storage.LoadCache(cacheKey, &discovered)
	if cacheErr != nil {
		c.logger.Warn("Failed to load GSP from cache", "error", cacheErr)
	}

	if !cached {
		discovered, err = c.client.FetchGSP(c.config.ElectricityMPAN)
		if err != nil {
			return "", err
		}
		if err := c.storage.SaveCache(cacheKey, discovered, ProductDirectoryTTL); err != nil {
			c.logger.Warn("Failed to cache GSP", "error", err)
		}
	}

	return discovered, nil
}
