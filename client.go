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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OctopusClient talks to the Octopus Energy public pricing REST API using
// basic auth with the account API key
type OctopusClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *Logger
}

// NewOctopusClient creates a new pricing API client
func NewOctopusClient(baseURL, apiKey string, logger *Logger) *OctopusClient {
	if baseURL == "" {
		baseURL = OctopusRESTAPIBase
	}
	return &OctopusClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.WithComponent("octopus"),
	}
}

// getJSON performs an authenticated GET and decodes the JSON response
func (c *OctopusClient) getJSON(url string, target interface{}) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("User-Agent", GetUserAgent())

	c.logger.LogAPIRequest("GET", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{
			Endpoint: url,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.LogAPIError(url, resp.StatusCode, fmt.Errorf("%s", string(bodyBytes)))
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   url,
			Message:    string(bodyBytes),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchProducts fetches the full products directory, following pagination
func (c *OctopusClient) FetchProducts() ([]ProductListing, error) {
	url := fmt.Sprintf("%s/products/?page_size=250", c.baseURL)

	var listings []ProductListing
	for url != "" {
		var page ProductsResponse
		if err := c.getJSON(url, &page); err != nil {
			return nil, err
		}
		listings = append(listings, page.Results...)
		url = page.Next
	}

	c.logger.LogDataCollection("products", len(listings))
	return listings, nil
}

// FetchProductDetail fetches a single product, including its per-region
// tariff tables
func (c *OctopusClient) FetchProductDetail(code string) (*ProductDetailResponse, error) {
	url := fmt.Sprintf("%s/products/%s/", c.baseURL, code)

	var detail ProductDetailResponse
	if err := c.getJSON(url, &detail); err != nil {
		return nil, err
	}

	c.logger.Info("Fetched product detail", "code", detail.Code, "name", detail.DisplayName)
	return &detail, nil
}

// FetchUnitRates fetches half-hourly standard unit rates for a tariff over a
// date window. The page size covers a full 31-day half-hourly grid so the
// window arrives in one page.
func (c *OctopusClient) FetchUnitRates(productCode, tariffCode string, from, to time.Time) (*UnitRatesResponse, error) {
	url := fmt.Sprintf("%s/products/%s/electricity-tariffs/%s/standard-unit-rates/?period_from=%s&period_to=%s&page_size=%d",
		c.baseURL,
		productCode,
		tariffCode,
		from.Format("2006-01-02T15:04:05Z"),
		to.Format("2006-01-02T15:04:05Z"),
		MaxAnalysisDays*SlotsPerDay,
	)

	var rates UnitRatesResponse
	if err := c.getJSON(url, &rates); err != nil {
		return nil, err
	}

	c.logger.LogDataCollection("unit_rates", len(rates.Results))
	return &rates, nil
}

// FetchGSP looks up the Grid Supply Point region for an electricity meter
// point, used when the region is not configured explicitly
func (c *OctopusClient) FetchGSP(mpan string) (string, error) {
	url := fmt.Sprintf("%s/electricity-meter-points/%s/", c.baseURL, mpan)

	var point MeterPointResponse
	if err := c.getJSON(url, &point); err != nil {
		return "", err
	}
	if point.GSP == "" {
		return "", &DataError{
			DataType: "meter_point",
			Message:  fmt.Sprintf("no GSP returned for MPAN %s", mpan),
		}
	}

	c.logger.Info("Discovered region from meter point", "mpan", mpan, "gsp", point.GSP)
	return point.GSP, nil
}

// PriceSamplesFromRates converts a unit-rates response into price samples.
// Timestamps split by fixed offsets into calendar date and HHMM slot; null
// prices read as zero. Records that fail to split are logged and skipped.
func PriceSamplesFromRates(rates *UnitRatesResponse, logger *Logger) []PriceSample {
	samples := make([]PriceSample, 0, len(rates.Results))
	for _, r := range rates.Results {
		date, slot, err := SplitTimestamp(r.ValidFrom)
		if err != nil {
			logger.Warn("Skipping malformed rate record", "valid_from", r.ValidFrom, "error", err)
			continue
		}
		samples = append(samples, PriceSample{
			Time:  slot,
			Date:  date,
			Value: floatOrZero(r.ValueIncVAT),
		})
	}
	return samples
}
