package dataflows

import (
	"strconv"
	"time"

	"github.com/dyike/FinAgentGo/config"
	"github.com/dyike/FinAgentGo/models"
	"github.com/shopspring/decimal"
)

// Config is an alias for the main application config
type Config = config.Config

// Quote is a provider-neutral snapshot of one instrument.
type Quote struct {
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	Currency      string              `json:"currency,omitempty"`
	Exchange      string              `json:"exchange,omitempty"`
	Price         decimal.NullDecimal `json:"price"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Volume        int64               `json:"volume,omitempty"`
	AvgVolume     int64               `json:"avg_volume,omitempty"`
	MarketTime    time.Time           `json:"market_time"`
}

type Fundamentals struct {
	TrailingPE       decimal.NullDecimal `json:"trailing_pe"`
	EPS              decimal.NullDecimal `json:"eps_ttm"`
	MarketCap        int64               `json:"market_cap,omitempty"`
	FiftyTwoWeekHigh decimal.NullDecimal `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  decimal.NullDecimal `json:"fifty_two_week_low"`
}

// Record converts the quote into a MarketRecord. An empty displayName falls
// back to the provider's name for the instrument.
func (q *Quote) Record(group models.Group, displayName string) models.MarketRecord {
	if displayName == "" {
		displayName = q.Name
	}
	extra := map[string]string{}
	if !q.MarketTime.IsZero() {
		extra["market_time"] = q.MarketTime.UTC().Format(time.RFC3339)
	}
	if q.Volume > 0 {
		extra["volume"] = strconv.FormatInt(q.Volume, 10)
	}
	if q.AvgVolume > 0 {
		extra["avg_volume"] = strconv.FormatInt(q.AvgVolume, 10)
	}
	if q.Currency != "" {
		extra["currency"] = q.Currency
	}
	if q.Exchange != "" {
		extra["exchange"] = q.Exchange
	}
	return models.MarketRecord{
		Symbol:        q.Symbol,
		DisplayName:   displayName,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Group:         group,
		ExtraMetrics:  extra,
	}
}

func (f *Fundamentals) apply(rec *models.MarketRecord) {
	if rec.ExtraMetrics == nil {
		rec.ExtraMetrics = map[string]string{}
	}
	if f.TrailingPE.Valid {
		rec.ExtraMetrics["pe_ratio"] = f.TrailingPE.Decimal.StringFixed(2)
	}
	if f.EPS.Valid {
		rec.ExtraMetrics["eps_ttm"] = f.EPS.Decimal.StringFixed(2)
	}
	if f.MarketCap > 0 {
		rec.ExtraMetrics["market_cap"] = strconv.FormatInt(f.MarketCap, 10)
	}
	if f.FiftyTwoWeekHigh.Valid {
		rec.ExtraMetrics["fifty_two_week_high"] = f.FiftyTwoWeekHigh.Decimal.String()
	}
	if f.FiftyTwoWeekLow.Valid {
		rec.ExtraMetrics["fifty_two_week_low"] = f.FiftyTwoWeekLow.Decimal.String()
	}
}

// nonZero treats a zero float from a provider as missing.
func nonZero(f float64) decimal.NullDecimal {
	if f == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}
