package models

import (
	"github.com/shopspring/decimal"
)

// Group classifies a MarketRecord by where it came from.
type Group string

const (
	GroupAmericas  Group = "americas"
	GroupEurope    Group = "europe"
	GroupAsia      Group = "asia"
	GroupSector    Group = "sector"
	GroupCommodity Group = "commodity"
	GroupEquity    Group = "equity"
	GroupRates     Group = "rates"
)

func (g Group) IsRegion() bool {
	switch g {
	case GroupAmericas, GroupEurope, GroupAsia:
		return true
	}
	return false
}

// MarketRecord is one instrument snapshot. Numeric fields are either valid or
// explicitly absent, never zero-filled.
type MarketRecord struct {
	Symbol        string              `json:"symbol"`
	DisplayName   string              `json:"display_name"`
	Price         decimal.NullDecimal `json:"price"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Group         Group               `json:"group"`
	ExtraMetrics  map[string]string   `json:"extra_metrics,omitempty"`
}

// Metric returns an extra metric or "" when absent.
func (r MarketRecord) Metric(key string) string {
	if r.ExtraMetrics == nil {
		return ""
	}
	return r.ExtraMetrics[key]
}

func NullFromFloat(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// MarketDataInput is the argument shape of symbol-based lookups.
type MarketDataInput struct {
	Symbols []string `json:"symbols"`
}

type MoversInput struct {
	Limit int    `json:"limit"`
	URL   string `json:"url"`
}

type CommoditiesInput struct {
	Names []string `json:"names"`
}

type IndicesInput struct {
	Groups []string `json:"groups"`
}

// ItemResult is a per-item outcome of a batch fetch.
type ItemResult struct {
	Key    string        `json:"key"`
	Record *MarketRecord `json:"record,omitempty"`
	Error  string        `json:"error,omitempty"`
}
