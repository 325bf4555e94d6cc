package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/FinAgentGo/models"
	"github.com/dyike/FinAgentGo/pkg/dataflows"
)

type emptyInput struct{}

func NewStockPriceTool(f *dataflows.Fetcher) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: StockPrice,
			Desc: "Get the latest price, change and fundamentals (P/E, market cap, 52 week range) for one or more stock tickers",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbols": {
					Type:     schema.Array,
					Desc:     "Ticker symbols, e.g. [\"AAPL\", \"MSFT\"]",
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.MarketDataInput) (string, error) {
			if len(input.Symbols) == 0 {
				return errorText(StockPrice, fmt.Errorf("symbols parameter is required")), nil
			}
			return toJSON(f.LookupStocks(ctx, input.Symbols))
		},
	)
}

func NewWorldIndicesTool(f *dataflows.Fetcher) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: WorldIndices,
			Desc: "Get major world stock indices and currency indices for the Americas, Europe and Asia",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"groups": {
					Type:     schema.Array,
					Desc:     "Regions to include: americas, europe, asia. Empty means all",
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input models.IndicesInput) (string, error) {
			groups, err := dataflows.ParseGroups(input.Groups)
			if err != nil {
				return errorText(WorldIndices, err), nil
			}
			return toJSON(f.FetchWorldIndices(ctx, groups...))
		},
	)
}

func NewCommoditiesTool(f *dataflows.Fetcher) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: Commodities,
			Desc: "Get the latest futures price for commodities: gold, silver, copper, natural gas, brent crude, crude oil",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"names": {
					Type:     schema.Array,
					Desc:     "Commodity names. Empty means all known commodities",
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input models.CommoditiesInput) (string, error) {
			names := input.Names
			if len(names) == 0 {
				names = dataflows.CommodityNames()
			}
			return toJSON(f.FetchCommodities(ctx, names))
		},
	)
}

func NewMarketMoversTool(s *dataflows.MoversScraper) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: MarketMovers,
			Desc: "Scrape the TradingView large-cap market movers table and return the top rows ranked by market cap",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"limit": {
					Type:     schema.Integer,
					Desc:     "Number of rows to return (default: 10)",
					Required: false,
				},
				"url": {
					Type:     schema.String,
					Desc:     "Movers page URL, defaults to the configured TradingView page",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input models.MoversInput) (string, error) {
			records, err := s.ScrapeMarketMovers(ctx, input.URL, input.Limit)
			if err != nil {
				return errorText(MarketMovers, err), nil
			}
			return toJSON(records)
		},
	)
}

func NewSectorPerformanceTool(f *dataflows.Fetcher) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: SectorTone,
			Desc: "Rank the S&P 500 sector ETFs by daily change and classify the market tone as risk-on, risk-off or mixed",
		},
		func(ctx context.Context, _ emptyInput) (string, error) {
			return toJSON(f.FetchSectorPerformance(ctx))
		},
	)
}

func NewTreasuryYieldsTool(f *dataflows.Fetcher) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: TreasuryYields,
			Desc: "Get US treasury yields (13 week, 5, 10 and 30 year) and whether the 10y-3m curve is inverted",
		},
		func(ctx context.Context, _ emptyInput) (string, error) {
			return toJSON(f.FetchTreasuryYields(ctx))
		},
	)
}
