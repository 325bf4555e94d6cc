package dataflows

import (
	"context"

	"github.com/dyike/FinAgentGo/models"
	"github.com/shopspring/decimal"
)

var treasuryYields = []instrument{
	{"^IRX", "13 Week Treasury Bill", models.GroupRates},
	{"^FVX", "5 Year Treasury Yield", models.GroupRates},
	{"^TNX", "10 Year Treasury Yield", models.GroupRates},
	{"^TYX", "30 Year Treasury Yield", models.GroupRates},
}

var treasuryTenor = map[string]string{
	"^IRX": "3m",
	"^FVX": "5y",
	"^TNX": "10y",
	"^TYX": "30y",
}

type YieldCurve struct {
	Yields []models.ItemResult `json:"yields"`
	// Spread10y3m is the 10 year minus 13 week yield in percentage points.
	Spread10y3m decimal.NullDecimal `json:"spread_10y_3m"`
	Inverted    bool                `json:"inverted"`
}

// FetchTreasuryYields quotes the benchmark yields. Prices of these symbols are
// yields in percent.
func (f *Fetcher) FetchTreasuryYields(ctx context.Context) YieldCurve {
	results := f.fetchInstruments(ctx, "yield", treasuryYields)

	byTenor := map[string]decimal.NullDecimal{}
	for _, res := range results {
		if res.Record == nil {
			continue
		}
		tenor := treasuryTenor[res.Key]
		res.Record.ExtraMetrics["tenor"] = tenor
		byTenor[tenor] = res.Record.Price
	}

	curve := YieldCurve{Yields: results}
	short, long := byTenor["3m"], byTenor["10y"]
	if short.Valid && long.Valid {
		spread := long.Decimal.Sub(short.Decimal)
		curve.Spread10y3m = decimal.NewNullDecimal(spread)
		curve.Inverted = spread.IsNegative()
	}
	return curve
}
