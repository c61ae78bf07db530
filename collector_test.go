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
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// octopusStub serves the products directory, a product detail and unit rates,
// counting requests per endpoint
type octopusStub struct {
	products   atomic.Int64
	detail     atomic.Int64
	rates      atomic.Int64
	meterPoint atomic.Int64
}

func (s *octopusStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/products/":
			s.products.Add(1)
			fmt.Fprint(w, `{"count":1,"next":"","results":[{"code":"AGILE-FLEX-22-11-25","display_name":"Agile Octopus"}]}`)
		case r.URL.Path == "/products/AGILE-FLEX-22-11-25/":
			s.detail.Add(1)
			fmt.Fprint(w, `{
				"code":"AGILE-FLEX-22-11-25",
				"display_name":"Agile Octopus",
				"full_name":"Agile Octopus November 2022 v1",
				"single_register_electricity_tariffs":{
					"_H":{"direct_debit_monthly":{
						"code":"E-1R-AGILE-FLEX-22-11-25-H",
						"standing_charge_inc_vat":45.0,
						"standard_unit_rate_inc_vat":28.5
					}}
				}
			}`)
		case strings.HasSuffix(r.URL.Path, "/standard-unit-rates/"):
			s.rates.Add(1)
			fmt.Fprint(w, `{"count":2,"next":"","results":[
				{"valid_from":"2023-05-01T00:00:00+01:00","value_inc_vat":12.5},
				{"valid_from":"2023-05-01T00:30:00+01:00","value_inc_vat":11.0}
			]}`)
		case strings.HasPrefix(r.URL.Path, "/electricity-meter-points/"):
			s.meterPoint.Add(1)
			fmt.Fprint(w, `{"gsp":"_H","mpan":"1200012345678"}`)
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestCollector(t *testing.T, serverURL string, config *Config) *Collector {
	t.Helper()
	logger := NewLogger(false)
	storage, err := NewStorage(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	client := NewOctopusClient(serverURL, config.APIKey, logger)
	solcast := NewSolcastClient(config.SolcastBaseURL, config.SolcastAPIKey, logger)
	return NewCollector(client, solcast, config, storage, logger)
}

func TestCollectProduct(t *testing.T) {
	stub := &octopusStub{}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	config := validConfig()
	collector := newTestCollector(t, server.URL, config)

	product, err := collector.CollectProduct("AGILE")
	require.NoError(t, err)

	assert.Equal(t, "AGILE-FLEX-22-11-25", product.Code)
	assert.Equal(t, "E-1R-AGILE-FLEX-22-11-25-H", product.TariffCode)
	assert.True(t, product.HasTimedPricing())

	// Second resolve goes through the TTL cache, not the API
	_, err = collector.CollectProduct("AGILE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stub.products.Load())
	assert.Equal(t, int64(1), stub.detail.Load())
}

func TestCollectRatesPrefersSnapshot(t *testing.T) {
	stub := &octopusStub{}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	config := validConfig()
	collector := newTestCollector(t, server.URL, config)

	product := &ProductInfo{
		Code:       "AGILE-FLEX-22-11-25",
		TariffCode: "E-1R-AGILE-FLEX-22-11-25-H",
		GSP:        "_H",
	}
	now := time.Date(2023, 5, 2, 12, 0, 0, 0, time.UTC)

	samples, err := collector.CollectRates(product, now)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 12.5, samples[0].Value)
	assert.Equal(t, int64(1), stub.rates.Load())

	// The snapshot replays the run without a second fetch
	again, err := collector.CollectRates(product, now)
	require.NoError(t, err)
	assert.Equal(t, samples, again)
	assert.Equal(t, int64(1), stub.rates.Load())
}

func TestCollectAllWithoutSolcast(t *testing.T) {
	stub := &octopusStub{}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	config := validConfig()
	config.Product = "AGILE"
	collector := newTestCollector(t, server.URL, config)

	data, err := collector.CollectAll()
	require.NoError(t, err)

	require.NotNil(t, data.Product)
	assert.Len(t, data.Rates, 2)
	assert.Empty(t, data.Forecasts)
	assert.Empty(t, data.EstimatedActs)
	assert.False(t, data.FetchedAt.IsZero())
}

// solcastStub serves yield endpoints for one site, counting requests
type solcastStub struct {
	forecasts atomic.Int64
	actuals   atomic.Int64
}

func (s *solcastStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/forecasts"):
			s.forecasts.Add(1)
			fmt.Fprint(w, `{"forecasts":[
				{"pv_estimate":1.5,"period_end":"2023-06-02T10:30:00Z","period":"PT30M"},
				{"pv_estimate":2.0,"period_end":"2023-06-02T11:00:00Z","period":"PT30M"}
			]}`)
		case strings.HasSuffix(r.URL.Path, "/estimated_actuals"):
			s.actuals.Add(1)
			fmt.Fprint(w, `{"estimated_actuals":[
				{"pv_estimate":0.8,"period_end":"2023-06-01T14:00:00Z","period":"PT30M"}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}
}

func TestCollectYieldSnapshotsRawResponses(t *testing.T) {
	stub := &solcastStub{}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	config := validConfig()
	config.SolcastAPIKey = "solcast_key"
	config.SolcastBaseURL = server.URL
	config.SolcastSites = []string{"site-123"}
	collector := newTestCollector(t, "http://unused.invalid", config)

	forecasts, actuals, err := collector.CollectYield()
	require.NoError(t, err)
	require.Len(t, forecasts, 2)
	require.Len(t, actuals, 1)
	assert.Equal(t, "site-123", forecasts[0].SiteID)

	// The snapshot is the raw response, not converted samples, so it decodes
	// back into the response shape
	var raw SolcastForecastResponse
	found, err := collector.storage.LoadSnapshot("solcast_site-123_forecasts", &raw)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, raw.Forecasts, 2)
	assert.Equal(t, "2023-06-02T10:30:00Z", raw.Forecasts[0].PeriodEnd)

	// A second collection replays the snapshots without refetching
	again, _, err := collector.CollectYield()
	require.NoError(t, err)
	assert.Equal(t, forecasts, again)
	assert.Equal(t, int64(1), stub.forecasts.Load())
	assert.Equal(t, int64(1), stub.actuals.Load())
}

func TestResolveRegionFromMeterPoint(t *testing.T) {
	stub := &octopusStub{}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	config := validConfig()
	config.GSP = ""
	config.ElectricityMPAN = "1200012345678"
	collector := newTestCollector(t, server.URL, config)

	product, err := collector.CollectProduct("AGILE")
	require.NoError(t, err)
	assert.Equal(t, "_H", product.GSP)
	assert.Equal(t, int64(1), stub.meterPoint.Load())

	// Discovery result is cached
	_, err = collector.CollectProduct("AGILE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stub.meterPoint.Load())
}

func TestResolveRegionMissingEverything(t *testing.T) {
	stub := &octopusStub{}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	config := validConfig()
	config.GSP = ""
	config.ElectricityMPAN = ""
	collector := newTestCollector(t, server.URL, config)

	_, err := collector.CollectProduct("AGILE")
	assert.Error(t, err)
}
