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

// SolcastClient fetches rooftop-site yield data from Solcast
type SolcastClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *Logger
}

// NewSolcastClient creates a new Solcast client
func NewSolcastClient(baseURL, apiKey string, logger *Logger) *SolcastClient {
	if baseURL == "" {
		baseURL = SolcastAPIBase
	}
	return &SolcastClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.WithComponent("solcast"),
	}
}

// FetchForecasts fetches forward-looking half-hourly yield forecasts for a
// site. The raw response is returned so it can be snapshotted as fetched;
// conversion to samples happens separately.
func (s *SolcastClient) FetchForecasts(siteID string) (*SolcastForecastResponse, error) {
	url := fmt.Sprintf("%s/rooftop_sites/%s/forecasts?format=json", s.baseURL, siteID)

	var resp SolcastForecastResponse
	if err := s.getJSON(url, &resp); err != nil {
		return nil, err
	}

	s.logger.LogDataCollection("forecasts", len(resp.Forecasts))
	return &resp, nil
}

// FetchEstimatedActuals fetches retrospective estimated-actual yield records
// for a site. The raw response is returned so it can be snapshotted as
// fetched.
func (s *SolcastClient) FetchEstimatedActuals(siteID string) (*SolcastEstimatedActualsResponse, error) {
	url := fmt.Sprintf("%s/rooftop_sites/%s/estimated_actuals?format=json", s.baseURL, siteID)

	var resp SolcastEstimatedActualsResponse
	if err := s.getJSON(url, &resp); err != nil {
		return nil, err
	}

	s.logger.LogDataCollection("estimated_actuals", len(resp.EstimatedActuals))
	return &resp, nil
}

// getJSON performs an authenticated GET and decodes the JSON response
func (s *SolcastClient) getJSON(url string, target interface{}) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("User-Agent", GetUserAgent())

	s.logger.LogAPIRequest("GET", url)

	resp, err := s.httpClient.Do(req)
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
		s.logger.LogAPIError(url, resp.StatusCode, fmt.Errorf("%s", string(bodyBytes)))
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

// YieldSamplesFromForecasts converts a forecast response into samples tagged
// as forward-looking
func YieldSamplesFromForecasts(resp *SolcastForecastResponse, siteID string) ([]YieldSample, error) {
	return yieldSamplesFromRecords(resp.Forecasts, siteID, true)
}

// YieldSamplesFromEstimatedActuals converts an estimated-actuals response into
// retrospective samples
func YieldSamplesFromEstimatedActuals(resp *SolcastEstimatedActualsResponse, siteID string) ([]YieldSample, error) {
	return yieldSamplesFromRecords(resp.EstimatedActuals, siteID, false)
}

// yieldSamplesFromRecords converts Solcast records into yield samples.
// period_end marks the end of the half-hour interval; null estimates read as
// zero.
func yieldSamplesFromRecords(records []SolcastRecord, siteID string, forecast bool) ([]YieldSample, error) {
	samples := make([]YieldSample, 0, len(records))
	for _, r := range records {
		ts, err := time.Parse(time.RFC3339, r.PeriodEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to parse period_end %q: %w", r.PeriodEnd, err)
		}
		samples = append(samples, YieldSample{
			Timestamp: ts,
			SiteID:    siteID,
			PowerKW:   floatOrZero(r.PVEstimate),
			Forecast:  forecast,
		})
	}
	return samples, nil
}
