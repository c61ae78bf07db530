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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchProductsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sk_test_key", user)

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"count":3,"next":"","results":[{"code":"SILVER-23-12-06"}]}`)
			return
		}
		fmt.Fprintf(w, `{"count":3,"next":"%s/products/?page=2","results":[
			{"code":"AGILE-FLEX-22-11-25","display_name":"Agile Octopus"},
			{"code":"AGILE-OUTGOING-19-05-13"}
		]}`, server.URL)
	}))
	defer server.Close()

	client := NewOctopusClient(server.URL, "sk_test_key", NewLogger(false))
	listings, err := client.FetchProducts()
	require.NoError(t, err)

	require.Len(t, listings, 3)
	assert.Equal(t, "AGILE-FLEX-22-11-25", listings[0].Code)
	assert.Equal(t, "SILVER-23-12-06", listings[2].Code)
}

func TestFetchProductDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/AGILE-FLEX-22-11-25/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"code":"AGILE-FLEX-22-11-25",
			"display_name":"Agile Octopus",
			"full_name":"Agile Octopus November 2022 v1",
			"is_variable":true,
			"single_register_electricity_tariffs":{
				"_H":{"direct_debit_monthly":{
					"code":"E-1R-AGILE-FLEX-22-11-25-H",
					"standing_charge_inc_vat":45.0,
					"standard_unit_rate_inc_vat":28.5
				}}
			}
		}`)
	}))
	defer server.Close()

	client := NewOctopusClient(server.URL, "sk_test_key", NewLogger(false))
	detail, err := client.FetchProductDetail("AGILE-FLEX-22-11-25")
	require.NoError(t, err)

	assert.Equal(t, "AGILE-FLEX-22-11-25", detail.Code)
	assert.True(t, detail.IsVariable)
	table, ok := detail.SingleRegisterElectricityTariffs["_H"]
	require.True(t, ok)
	require.NotNil(t, table.DirectDebitMonthly)
	assert.Equal(t, "E-1R-AGILE-FLEX-22-11-25-H", table.DirectDebitMonthly.Code)
}

func TestFetchUnitRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/AGILE-FLEX-22-11-25/electricity-tariffs/E-1R-AGILE-FLEX-22-11-25-H/standard-unit-rates/", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("period_from"))
		assert.NotEmpty(t, r.URL.Query().Get("period_to"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count":3,"next":"","results":[
			{"valid_from":"2023-05-01T00:00:00+01:00","value_inc_vat":12.5},
			{"valid_from":"2023-05-01T00:30:00+01:00","value_inc_vat":null},
			{"valid_from":"bogus","value_inc_vat":9.0}
		]}`)
	}))
	defer server.Close()

	client := NewOctopusClient(server.URL, "sk_test_key", NewLogger(false))
	from := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 5, 1, 23, 0, 0, 0, time.UTC)
	rates, err := client.FetchUnitRates("AGILE-FLEX-22-11-25", "E-1R-AGILE-FLEX-22-11-25-H", from, to)
	require.NoError(t, err)
	require.Len(t, rates.Results, 3)

	samples := PriceSamplesFromRates(rates, NewLogger(false))

	// The malformed record is dropped, the null price reads as zero
	require.Len(t, samples, 2)
	assert.Equal(t, PriceSample{Time: MustTimeOfDay("0000"), Date: "2023-05-01", Value: 12.5}, samples[0])
	assert.Equal(t, PriceSample{Time: MustTimeOfDay("0030"), Date: "2023-05-01", Value: 0}, samples[1])
}

func TestFetchGSP(t *testing.T) {
	t.Run("discovered", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/electricity-meter-points/1200012345678/", r.URL.Path)
			fmt.Fprint(w, `{"gsp":"_H","mpan":"1200012345678","profile_class":1}`)
		}))
		defer server.Close()

		client := NewOctopusClient(server.URL, "sk_test_key", NewLogger(false))
		gsp, err := client.FetchGSP("1200012345678")
		require.NoError(t, err)
		assert.Equal(t, "_H", gsp)
	})

	t.Run("missing gsp", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"mpan":"1200012345678"}`)
		}))
		defer server.Close()

		client := NewOctopusClient(server.URL, "sk_test_key", NewLogger(false))
		_, err := client.FetchGSP("1200012345678")
		var dataErr *DataError
		require.True(t, errors.As(err, &dataErr))
	})
}

func TestOctopusClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Not found."}`)
	}))
	defer server.Close()

	client := NewOctopusClient(server.URL, "sk_test_key", NewLogger(false))
	_, err := client.FetchProductDetail("NO-SUCH-PRODUCT")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSolcastFetchForecasts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rooftop_sites/site-123/forecasts", r.URL.Path)
		assert.Equal(t, "Bearer solcast_key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"forecasts":[
			{"pv_estimate":1.5,"period_end":"2023-06-02T10:30:00Z","period":"PT30M"},
			{"pv_estimate":null,"period_end":"2023-06-02T11:00:00Z","period":"PT30M"}
		]}`)
	}))
	defer server.Close()

	client := NewSolcastClient(server.URL, "solcast_key", NewLogger(false))
	resp, err := client.FetchForecasts("site-123")
	require.NoError(t, err)
	require.Len(t, resp.Forecasts, 2)

	samples, err := YieldSamplesFromForecasts(resp, "site-123")
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, 1.5, samples[0].PowerKW)
	assert.True(t, samples[0].Forecast)
	assert.Equal(t, "site-123", samples[0].SiteID)
	assert.Zero(t, samples[1].PowerKW)
}

func TestSolcastFetchEstimatedActuals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rooftop_sites/site-123/estimated_actuals", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"estimated_actuals":[
			{"pv_estimate":0.8,"period_end":"2023-06-01T14:00:00Z","period":"PT30M"}
		]}`)
	}))
	defer server.Close()

	client := NewSolcastClient(server.URL, "solcast_key", NewLogger(false))
	resp, err := client.FetchEstimatedActuals("site-123")
	require.NoError(t, err)

	samples, err := YieldSamplesFromEstimatedActuals(resp, "site-123")
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.False(t, samples[0].Forecast)
	assert.Equal(t, time.Date(2023, 6, 1, 14, 0, 0, 0, time.UTC), samples[0].Timestamp)
}

func TestSolcastBadTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"forecasts":[{"pv_estimate":1.0,"period_end":"not-a-time"}]}`)
	}))
	defer server.Close()

	client := NewSolcastClient(server.URL, "solcast_key", NewLogger(false))
	resp, err := client.FetchForecasts("site-123")
	require.NoError(t, err)

	_, err = YieldSamplesFromForecasts(resp, "site-123")
	assert.Error(t, err)
}
