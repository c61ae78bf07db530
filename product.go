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
	"sort"
	"strings"
)

// ProductKind tags a product as import, export or gas, so downstream code
// switches on a known case instead of probing for optional fields
type ProductKind int

const (
	KindImport ProductKind = iota
	KindExport
	KindGas
)

func (k ProductKind) String() string {
	switch k {
	case KindExport:
		return "export"
	case KindGas:
		return "gas"
	default:
		return "import"
	}
}

// DetectProductKind classifies a product from its code and tariff tables.
// Export products carry OUTGOING or EXPORT in their code; products offering
// only gas tariffs are gas; everything else is an import product.
func DetectProductKind(code string, hasElectricity, hasGas bool) ProductKind {
	upper := strings.ToUpper(code)
	if strings.Contains(upper, "OUTGOING") || strings.Contains(upper, "EXPORT") {
		return KindExport
	}
	if hasGas && !hasElectricity {
		return KindGas
	}
	return KindImport
}

// ProductInfo is the resolved view of one product for the configured region
type ProductInfo struct {
	Code          string      `json:"code"`
	DisplayName   string      `json:"displayName"`
	FullName      string      `json:"fullName"`
	Description   string      `json:"description"`
	Kind          ProductKind `json:"kind"`
	IsVariable    bool        `json:"isVariable"`
	IsGreen       bool        `json:"isGreen"`
	IsTracker     bool        `json:"isTracker"`
	TermMonths    *int        `json:"termMonths,omitempty"`
	AvailableFrom string      `json:"availableFrom"`
	AvailableTo   string      `json:"availableTo,omitempty"`

	GSP            string  `json:"gsp"`
	TariffCode     string  `json:"tariffCode"`     // regional tariff code used for unit-rate fetches
	StandingCharge float64 `json:"standingCharge"` // p/day inc VAT
	UnitRate       float64 `json:"unitRate"`       // p/kWh inc VAT

	GasTariffCode     string  `json:"gasTariffCode,omitempty"`
	GasStandingCharge float64 `json:"gasStandingCharge,omitempty"`
	GasUnitRate       float64 `json:"gasUnitRate,omitempty"`
}

// ResolveProductCode matches a partial product code against the directory.
// Exactly one prefix match is required; zero or multiple matches fail with
// AmbiguousProductError, listing the candidates.
func ResolveProductCode(prefix string, directory []ProductListing) (string, error) {
	var matches []string
	for _, p := range directory {
		if strings.HasPrefix(p.Code, prefix) {
			matches = append(matches, p.Code)
		}
	}
	sort.Strings(matches)
	if len(matches) != 1 {
		return "", &AmbiguousProductError{Prefix: prefix, Matches: matches}
	}
	return matches[0], nil
}

// NewProductInfo builds the regional view of a product detail response.
// Standing charges are p/day and unit rates p/kWh, both inc VAT.
func NewProductInfo(detail *ProductDetailResponse, gsp string) (*ProductInfo, error) {
	if _, ok := GSPRegions[gsp]; !ok {
		return nil, &ConfigError{Field: "gsp", Message: fmt.Sprintf("unknown region code %q", gsp)}
	}

	info := &ProductInfo{
		Code:          detail.Code,
		DisplayName:   detail.DisplayName,
		FullName:      detail.FullName,
		Description:   detail.Description,
		IsVariable:    detail.IsVariable,
		IsGreen:       detail.IsGreen,
		IsTracker:     detail.IsTracker,
		TermMonths:    detail.Term,
		AvailableFrom: detail.AvailableFrom,
		GSP:           gsp,
	}
	if detail.AvailableTo != nil {
		info.AvailableTo = *detail.AvailableTo
	}

	hasElectricity := len(detail.SingleRegisterElectricityTariffs) > 0
	hasGas := len(detail.SingleRegisterGasTariffs) > 0
	info.Kind = DetectProductKind(detail.Code, hasElectricity, hasGas)

	if hasElectricity {
		table, ok := detail.SingleRegisterElectricityTariffs[gsp]
		if !ok || table.DirectDebitMonthly == nil {
			return nil, &DataError{
				DataType: "product_detail",
				Message:  fmt.Sprintf("product %s has no electricity tariff for region %s", detail.Code, gsp),
			}
		}
		info.TariffCode = table.DirectDebitMonthly.Code
		info.StandingCharge = floatOrZero(table.DirectDebitMonthly.StandingChargeIncVAT)
		info.UnitRate = floatOrZero(table.DirectDebitMonthly.StandardUnitRateIncVAT)
	}

	if hasGas {
		table, ok := detail.SingleRegisterGasTariffs[gsp]
		if ok && table.DirectDebitMonthly != nil {
			info.GasTariffCode = table.DirectDebitMonthly.Code
			info.GasStandingCharge = floatOrZero(table.DirectDebitMonthly.StandingChargeIncVAT)
			info.GasUnitRate = floatOrZero(table.DirectDebitMonthly.StandardUnitRateIncVAT)
		}
	}

	if info.TariffCode == "" && info.GasTariffCode == "" {
		return nil, &DataError{
			DataType: "product_detail",
			Message:  fmt.Sprintf("product %s carries no tariff tables", detail.Code),
		}
	}

	return info, nil
}

// RegionName returns the human-readable distribution area for the product
func (p *ProductInfo) RegionName() string {
	return GSPRegions[p.GSP]
}

// HasTimedPricing reports whether the product has an electricity tariff whose
// half-hourly unit rates can be fetched
func (p *ProductInfo) HasTimedPricing() bool {
	return p.TariffCode != ""
}

// floatOrZero reads an optional upstream float, treating null as zero
func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
