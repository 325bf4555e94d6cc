package display

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dyike/FinAgentGo/models"
	"github.com/dyike/FinAgentGo/pkg/dataflows"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestDecimalAndPercent(t *testing.T) {
	assert.Equal(t, "n/a", Decimal(decimal.NullDecimal{}, 2))
	assert.Equal(t, "227.10", Decimal(dec("227.1"), 2))
	assert.Contains(t, Percent(dec("1.234")), "+1.23%")
	assert.Contains(t, Percent(dec("-0.4")), "-0.40%")
	assert.Contains(t, Percent(decimal.NullDecimal{}), "n/a")
}

func TestMoversTable(t *testing.T) {
	var buf bytes.Buffer
	Movers(&buf, []models.MarketRecord{
		{Symbol: "NVDA", DisplayName: "NVIDIA", Price: dec("120.5"), ChangePercent: dec("-0.4"),
			ExtraMetrics: map[string]string{"market_cap": "3.5T USD", "sector": "Electronic technology"}},
		{Symbol: "AAPL", DisplayName: "Apple Inc."},
	})

	out := buf.String()
	assert.Contains(t, out, "Market movers (2)")
	assert.Contains(t, out, "NVDA")
	assert.Contains(t, out, "3.5T USD")
	assert.Contains(t, out, "120.50")
	assert.Contains(t, out, "n/a")
}

func TestItemsShowsFailures(t *testing.T) {
	var buf bytes.Buffer
	Items(&buf, "Stocks", []models.ItemResult{
		{Key: "MSFT", Record: &models.MarketRecord{Symbol: "MSFT", Price: dec("410")}},
		{Key: "ZZZZ", Error: "no data available"},
	})

	out := buf.String()
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "410.00")
	assert.Contains(t, out, "ZZZZ")
	assert.Contains(t, out, "no data available")
}

func TestCommoditiesKeepsRequestOrder(t *testing.T) {
	var buf bytes.Buffer
	Commodities(&buf, []string{"gold", "unobtainium"}, map[string]dataflows.CommodityResult{
		"gold":        {Name: "gold", Record: &models.MarketRecord{Symbol: "GC=F", Price: dec("2400")}},
		"unobtainium": {Name: "unobtainium", Err: dataflows.ErrUnknownCommodity},
	})

	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("gold")), bytes.Index(buf.Bytes(), []byte("unobtainium")))
	assert.Contains(t, out, "GC=F")
	assert.Contains(t, out, "unknown_commodity")
}

func TestYieldsHeading(t *testing.T) {
	var buf bytes.Buffer
	Yields(&buf, dataflows.YieldCurve{Spread10y3m: dec("-0.7"), Inverted: true})
	assert.Contains(t, buf.String(), "-0.70 pts")
	assert.Contains(t, buf.String(), "inverted")
}

func TestSessionsAndTranscript(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	Sessions(&buf, &models.SessionPage{
		Sessions:   []models.SessionRecord{{ID: "s1", UserID: 7, Status: "done", CreatedAt: now, UpdatedAt: now}},
		NextCursor: 12,
	})
	assert.Contains(t, buf.String(), "2026-03-02 08:30:00")
	assert.Contains(t, buf.String(), "--cursor 12")

	buf.Reset()
	Transcript(&buf, &models.SessionRecord{ID: "s1", UserID: 7, Status: "error"}, []models.MessageRecord{
		{Role: "assistant", Content: "Futures are flat.", Seq: 2, Status: "done"},
		{Role: "user", Content: "morning brief", Seq: 1, Status: "done"},
		{Role: "system", Content: errors.New("boom").Error(), Seq: 3, Status: "error"},
	})
	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("morning brief")), bytes.Index(buf.Bytes(), []byte("Futures are flat.")))
	assert.Contains(t, out, "system [error]:")
}
