package dataflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
)

// LongportClient serves quotes from daily candlesticks of the Longport
// OpenAPI. Symbols use Longport notation such as AAPL.US or 700.HK.
type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportClient(cfg *Config) (*LongportClient, error) {
	if cfg.LongportAppKey == "" || cfg.LongportAppSecret == "" || cfg.LongportAccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteContext}, nil
}

func (lpc *LongportClient) Name() string { return "longport" }

func (lpc *LongportClient) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if lpc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}
	sticks, err := lpc.quoteCtx.Candlesticks(ctx, symbol, quote.PeriodDay, 2, quote.AdjustTypeNo)
	if err != nil {
		return nil, fmt.Errorf("candlesticks for %s: %w", symbol, err)
	}
	if len(sticks) == 0 {
		return nil, nil
	}

	last := sticks[len(sticks)-1]
	closePrice, _ := last.Close.Float64()
	out := &Quote{
		Symbol:     symbol,
		Price:      nonZero(closePrice),
		Volume:     last.Volume,
		MarketTime: time.Unix(last.Timestamp, 0),
	}
	if len(sticks) > 1 && out.Price.Valid {
		prev, _ := sticks[len(sticks)-2].Close.Float64()
		if prev != 0 {
			change := decimal.NewFromFloat(closePrice).Sub(decimal.NewFromFloat(prev))
			out.Change = decimal.NewNullDecimal(change)
			out.ChangePercent = decimal.NewNullDecimal(change.Div(decimal.NewFromFloat(prev)).Mul(decimal.NewFromInt(100)).Round(4))
		}
	}

	if infos, err := lpc.quoteCtx.StaticInfo(ctx, []string{symbol}); err == nil && len(infos) > 0 && infos[0] != nil {
		out.Name = infos[0].NameEn
		out.Currency = infos[0].Currency
		out.Exchange = infos[0].Exchange
	}
	return out, nil
}
