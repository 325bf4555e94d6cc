// Package tools exposes the market data capabilities to the agent as eino tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cloudwego/eino/components/tool"

	"github.com/dyike/FinAgentGo/pkg/dataflows"
)

const (
	StockPrice     = "get_stock_price"
	WorldIndices   = "get_world_indices"
	Commodities    = "fetch_commodity_data"
	MarketMovers   = "scrape_tradingview_market_movers"
	SectorTone     = "get_sector_performance"
	TreasuryYields = "get_treasury_yields"
)

// Catalog maps a task kind to the tool that serves it.
type Catalog struct {
	tools map[string]tool.InvokableTool
	order []string
}

func NewCatalog(fetcher *dataflows.Fetcher, scraper *dataflows.MoversScraper) *Catalog {
	c := &Catalog{tools: make(map[string]tool.InvokableTool)}
	c.register(StockPrice, NewStockPriceTool(fetcher))
	c.register(WorldIndices, NewWorldIndicesTool(fetcher))
	c.register(Commodities, NewCommoditiesTool(fetcher))
	c.register(MarketMovers, NewMarketMoversTool(scraper))
	c.register(SectorTone, NewSectorPerformanceTool(fetcher))
	c.register(TreasuryYields, NewTreasuryYieldsTool(fetcher))
	return c
}

func (c *Catalog) register(name string, t tool.InvokableTool) {
	c.tools[name] = t
	c.order = append(c.order, name)
}

func (c *Catalog) Get(name string) (tool.InvokableTool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Names returns the registered task kinds in sorted order.
func (c *Catalog) Names() []string {
	names := append([]string(nil), c.order...)
	sort.Strings(names)
	return names
}

// Tools returns every tool in registration order, ready for a react agent.
func (c *Catalog) Tools() []tool.BaseTool {
	out := make([]tool.BaseTool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Infos lists the tool schemas, used by the CLI and the debug UI.
func (c *Catalog) Infos(ctx context.Context) ([]string, error) {
	lines := make([]string, 0, len(c.order))
	for _, name := range c.order {
		info, err := c.tools[name].Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", name, err)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", info.Name, info.Desc))
	}
	return lines, nil
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func errorText(tool string, err error) string {
	slog.Warn("tool call failed", "tool", tool, "err", err)
	return "Error: " + err.Error()
}
