package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyike/FinAgentGo/internal/display"
	"github.com/dyike/FinAgentGo/pkg/app"
	"github.com/dyike/FinAgentGo/pkg/dataflows"
)

// withEngine builds a data-only engine for a single command and closes it
// afterwards.
func withEngine(ctx context.Context, opts *rootOptions, fn func(context.Context, *app.Engine) error) error {
	engine, err := app.BuildEngine(*opts.cfg, app.WithoutAgent())
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*opts.cfg.FetchTimeout())
	defer cancel()
	return fn(ctx, engine)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMoversCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		url    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "movers",
		Short: "Scrape the TradingView market movers table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), opts, func(ctx context.Context, e *app.Engine) error {
				records, err := e.Scraper.ScrapeMarketMovers(ctx, url, limit)
				if err != nil {
					return fmt.Errorf("scrape movers (%s): %w", dataflows.ErrorKind(err), err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), records)
				}
				display.Movers(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum rows to return (default from config, or 10)")
	cmd.Flags().StringVar(&url, "url", "", "Movers page URL (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newIndicesCmd(opts *rootOptions) *cobra.Command {
	var (
		groups []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "indices",
		Short: "Quote world indices and currencies by region",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := dataflows.ParseGroups(groups)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), opts, func(ctx context.Context, e *app.Engine) error {
				results := e.Fetcher.FetchWorldIndices(ctx, parsed...)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				display.Items(cmd.OutOrStdout(), "World indices", results)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&groups, "group", "g", nil, "Regions: americas, europe, asia (default all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newCommoditiesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "commodities [NAME...]",
		Short: "Quote commodity futures by name",
		Long: "Quote commodity futures. Known names: " +
			strings.Join(dataflows.CommodityNames(), ", ") + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = dataflows.CommodityNames()
			}
			return withEngine(cmd.Context(), opts, func(ctx context.Context, e *app.Engine) error {
				results := e.Fetcher.FetchCommodities(ctx, names)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				display.Commodities(cmd.OutOrStdout(), names, results)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newStocksCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stocks SYMBOL...",
		Short: "Quote individual stocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), opts, func(ctx context.Context, e *app.Engine) error {
				results := e.Fetcher.LookupStocks(ctx, args)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				display.Items(cmd.OutOrStdout(), "Stocks", results)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newSectorsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sectors",
		Short: "Rank sector ETFs and read the market tone",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), opts, func(ctx context.Context, e *app.Engine) error {
				snap := e.Fetcher.FetchSectorPerformance(ctx)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), snap)
				}
				display.Sectors(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newYieldsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "yields",
		Short: "Quote benchmark treasury yields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), opts, func(ctx context.Context, e *app.Engine) error {
				curve := e.Fetcher.FetchTreasuryYields(ctx)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), curve)
				}
				display.Yields(cmd.OutOrStdout(), curve)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
