//go:generate mockgen -package=dataflows_test -destination=mock_interface_test.go -source=interface.go
package dataflows_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dyike/FinAgentGo/models"
	"github.com/dyike/FinAgentGo/pkg/cache"
	"github.com/dyike/FinAgentGo/pkg/dataflows"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func quoteAt(symbol string, price, pct float64) *dataflows.Quote {
	return &dataflows.Quote{
		Symbol:        symbol,
		Name:          symbol + " name",
		Price:         decimal.NewNullDecimal(decimal.NewFromFloat(price)),
		Change:        decimal.NewNullDecimal(decimal.NewFromFloat(price * pct / 100)),
		ChangePercent: decimal.NewNullDecimal(decimal.NewFromFloat(pct)),
		MarketTime:    time.Unix(1700000000, 0),
	}
}

func TestFetchCommoditiesPartialSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	provider.EXPECT().
		Quote(gomock.Any(), "GC=F").
		Return(quoteAt("GC=F", 2350.4, 0.8), nil).
		Times(1)

	f := dataflows.NewFetcher(provider)
	got := f.FetchCommodities(context.Background(), []string{"gold", "unknown-thing"})

	require.Len(t, got, 2)
	gold := got["gold"]
	require.NoError(t, gold.Err)
	require.NotNil(t, gold.Record)
	assert.Equal(t, "GC=F", gold.Record.Symbol)
	assert.Equal(t, "Gold", gold.Record.DisplayName)
	assert.Equal(t, models.GroupCommodity, gold.Record.Group)
	assert.True(t, gold.Record.Price.Valid)

	unknown := got["unknown-thing"]
	assert.Nil(t, unknown.Record)
	require.ErrorIs(t, unknown.Err, dataflows.ErrUnknownCommodity)
}

func TestFetchCommoditiesPerItemFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	provider.EXPECT().Quote(gomock.Any(), "SI=F").Return(nil, nil)
	provider.EXPECT().Quote(gomock.Any(), "CL=F").Return(nil, errors.New("connection reset"))
	provider.EXPECT().Quote(gomock.Any(), "NG=F").Return(quoteAt("NG=F", 2.1, -3.2), nil)

	f := dataflows.NewFetcher(provider)
	got := f.FetchCommodities(context.Background(), []string{"Silver", " Crude Oil ", "NATURAL GAS"})

	require.Len(t, got, 3)
	assert.ErrorIs(t, got["Silver"].Err, dataflows.ErrNoData)
	assert.ErrorIs(t, got[" Crude Oil "].Err, dataflows.ErrTransport)
	assert.Contains(t, got[" Crude Oil "].Err.Error(), "connection reset")
	require.NoError(t, got["NATURAL GAS"].Err)
	assert.Equal(t, "Natural Gas", got["NATURAL GAS"].Record.DisplayName)
}

func TestFetchCommoditiesBoundedByTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	provider.EXPECT().
		Quote(gomock.Any(), "HG=F").
		DoAndReturn(func(ctx context.Context, _ string) (*dataflows.Quote, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	f := dataflows.NewFetcher(provider, dataflows.WithFetchTimeout(50*time.Millisecond))
	start := time.Now()
	got := f.FetchCommodities(context.Background(), []string{"copper"})

	assert.Less(t, time.Since(start), 2*time.Second)
	require.ErrorIs(t, got["copper"].Err, dataflows.ErrTransport)
}

func TestCommodityResultJSON(t *testing.T) {
	res := dataflows.CommodityResult{Name: "platinum", Err: dataflows.ErrUnknownCommodity}
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "platinum", out["name"])
	assert.Equal(t, "unknown_commodity", out["error_kind"])
	assert.NotContains(t, out, "record")
}

func TestFetchWorldIndicesKeepsOrderAndReportsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	provider.EXPECT().
		Quote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, symbol string) (*dataflows.Quote, error) {
			if symbol == "^GDAXI" {
				return nil, errors.New("upstream 500")
			}
			return quoteAt(symbol, 100, 1), nil
		}).
		Times(7)

	f := dataflows.NewFetcher(provider)
	got := f.FetchWorldIndices(context.Background(), models.GroupEurope)

	require.Len(t, got, 7)
	assert.Equal(t, "IEUR", got[0].Key)
	assert.Equal(t, "MSCI Europe", got[0].Record.DisplayName)
	assert.Equal(t, models.GroupEurope, got[0].Record.Group)
	assert.Equal(t, "GBPUSD=X", got[6].Key)

	var failed []string
	for _, r := range got {
		if r.Error != "" {
			failed = append(failed, r.Key)
			assert.Nil(t, r.Record)
		}
	}
	assert.Equal(t, []string{"^GDAXI"}, failed)
}

func TestParseGroups(t *testing.T) {
	groups, err := dataflows.ParseGroups([]string{"Americas", " asia "})
	require.NoError(t, err)
	assert.Equal(t, []models.Group{models.GroupAmericas, models.GroupAsia}, groups)

	_, err = dataflows.ParseGroups([]string{"africa"})
	require.Error(t, err)
}

func TestFetchSectorPerformanceRanksLeadersFirst(t *testing.T) {
	changes := map[string]float64{"XLK": 2.5, "XLE": -1.1, "XLU": 0.3}
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	provider.EXPECT().
		Quote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, symbol string) (*dataflows.Quote, error) {
			pct, ok := changes[symbol]
			if !ok {
				return nil, nil
			}
			return quoteAt(symbol, 50, pct), nil
		}).
		AnyTimes()

	snap := dataflows.NewFetcher(provider).FetchSectorPerformance(context.Background())

	require.Len(t, snap.Ranked, 3)
	assert.Equal(t, "XLK", snap.Ranked[0].Symbol)
	assert.Equal(t, "Technology", snap.Ranked[0].DisplayName)
	assert.Equal(t, "XLE", snap.Ranked[2].Symbol)
	assert.Len(t, snap.Failed, 8)
	assert.Equal(t, 2, snap.Advancers)
	assert.Equal(t, 1, snap.Decliners)
	assert.Equal(t, dataflows.ToneRiskOn, snap.Tone)
}

func TestFetchTreasuryYieldsDetectsInversion(t *testing.T) {
	yields := map[string]float64{"^IRX": 5.2, "^FVX": 4.4, "^TNX": 4.3, "^TYX": 4.5}
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	provider.EXPECT().
		Quote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, symbol string) (*dataflows.Quote, error) {
			return quoteAt(symbol, yields[symbol], 0), nil
		}).
		Times(4)

	curve := dataflows.NewFetcher(provider).FetchTreasuryYields(context.Background())

	require.Len(t, curve.Yields, 4)
	assert.Equal(t, "3m", curve.Yields[0].Record.Metric("tenor"))
	require.True(t, curve.Spread10y3m.Valid)
	assert.Equal(t, "-0.9", curve.Spread10y3m.Decimal.String())
	assert.True(t, curve.Inverted)
}

type quoteAndFundamentals struct {
	*MockQuoteProvider
	*MockFundamentalsProvider
}

func TestLookupStocksAddsFundamentals(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotes := NewMockQuoteProvider(ctrl)
	funds := NewMockFundamentalsProvider(ctrl)
	quotes.EXPECT().Quote(gomock.Any(), "AAPL").Return(quoteAt("AAPL", 190, 1.2), nil)
	quotes.EXPECT().Quote(gomock.Any(), "ZZZZ").Return(nil, nil)
	funds.EXPECT().Fundamentals(gomock.Any(), "AAPL").Return(&dataflows.Fundamentals{
		TrailingPE: decimal.NewNullDecimal(decimal.NewFromFloat(29.456)),
		MarketCap:  2900000000000,
	}, nil)

	f := dataflows.NewFetcher(quoteAndFundamentals{quotes, funds})
	got := f.LookupStocks(context.Background(), []string{"aapl", "zzzz", ""})

	require.Len(t, got, 3)
	require.NotNil(t, got[0].Record)
	assert.Equal(t, "AAPL", got[0].Key)
	assert.Equal(t, models.GroupEquity, got[0].Record.Group)
	assert.Equal(t, "29.46", got[0].Record.Metric("pe_ratio"))
	assert.Equal(t, "2900000000000", got[0].Record.Metric("market_cap"))
	assert.Contains(t, got[1].Error, "no data")
	assert.Contains(t, got[2].Error, "empty")
}

func TestCachedProviderServesRepeatLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()
	provider.EXPECT().Quote(gomock.Any(), "MSFT").Return(quoteAt("MSFT", 410.5, 0.5), nil).Times(1)
	provider.EXPECT().Quote(gomock.Any(), "NONE").Return(nil, nil).Times(2)

	cached := dataflows.NewCachedProvider(provider, cache.NewFileStore(t.TempDir()), time.Minute)
	ctx := context.Background()

	first, err := cached.Quote(ctx, "MSFT")
	require.NoError(t, err)
	second, err := cached.Quote(ctx, "msft")
	require.NoError(t, err)
	assert.True(t, first.Price.Decimal.Equal(second.Price.Decimal))
	assert.Equal(t, "MSFT name", second.Name)

	for i := 0; i < 2; i++ {
		q, err := cached.Quote(ctx, "NONE")
		require.NoError(t, err)
		assert.Nil(t, q)
	}

	// Fundamentals are not supported by the wrapped mock.
	fund, err := cached.Fundamentals(ctx, "MSFT")
	require.NoError(t, err)
	assert.Nil(t, fund)
}

func TestFetcherReportsToObserver(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockQuoteProvider(ctrl)
	obs := NewMockObserver(ctrl)
	provider.EXPECT().Quote(gomock.Any(), "GC=F").Return(quoteAt("GC=F", 1, 1), nil)
	obs.EXPECT().ObserveFetch("commodity", nil).Times(1)
	obs.EXPECT().ObserveFetch("commodity", gomock.Not(gomock.Nil())).Times(1)

	f := dataflows.NewFetcher(provider, dataflows.WithFetchObserver(obs))
	got := f.FetchCommodities(context.Background(), []string{"gold", "plutonium"})
	require.Len(t, got, 2)
}
