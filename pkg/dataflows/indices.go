package dataflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyike/FinAgentGo/models"
)

type instrument struct {
	Symbol string
	Name   string
	Group  models.Group
}

var worldIndices = []instrument{
	{"^BVSP", "IBOVESPA", models.GroupAmericas},
	{"^RUT", "Russell 2000", models.GroupAmericas},
	{"^GSPTSE", "S&P/TSX", models.GroupAmericas},
	{"^IXIC", "Nasdaq", models.GroupAmericas},
	{"^GSPC", "S&P 500", models.GroupAmericas},
	{"^DJI", "DOW 30", models.GroupAmericas},
	{"DX-Y.NYB", "US Dollar", models.GroupAmericas},
	{"^VIX", "VIX", models.GroupAmericas},

	{"IEUR", "MSCI Europe", models.GroupEurope},
	{"^FTSE", "FTSE 100", models.GroupEurope},
	{"^FCHI", "CAC 40", models.GroupEurope},
	{"^GDAXI", "DAX", models.GroupEurope},
	{"^STOXX50E", "EURO STOXX 50", models.GroupEurope},
	{"EURUSD=X", "Euro Index", models.GroupEurope},
	{"GBPUSD=X", "British Pound Index", models.GroupEurope},

	{"^HSI", "Hang Seng", models.GroupAsia},
	{"000001.SS", "Shanghai", models.GroupAsia},
	{"^N225", "Nikkei 225", models.GroupAsia},
	{"^AXJO", "S&P/ASX 200", models.GroupAsia},
	{"^BSESN", "Sensex", models.GroupAsia},
	{"^KS11", "KOSPI", models.GroupAsia},
	{"JPY=X", "Yen Index", models.GroupAsia},
	{"AUDUSD=X", "Australian Dollar Index", models.GroupAsia},
}

// ParseGroups maps user supplied region names onto groups. Empty input selects
// every region.
func ParseGroups(names []string) ([]models.Group, error) {
	var out []models.Group
	for _, n := range names {
		g := models.Group(strings.ToLower(strings.TrimSpace(n)))
		if g == "" {
			continue
		}
		if !g.IsRegion() {
			return nil, fmt.Errorf("unknown region %q, want americas, europe or asia", n)
		}
		out = append(out, g)
	}
	return out, nil
}

// FetchWorldIndices quotes the predefined indices and currencies of the given
// regions, or of every region when none is given. Results keep table order.
func (f *Fetcher) FetchWorldIndices(ctx context.Context, groups ...models.Group) []models.ItemResult {
	want := map[models.Group]bool{}
	for _, g := range groups {
		want[g] = true
	}
	var selected []instrument
	for _, in := range worldIndices {
		if len(want) == 0 || want[in.Group] {
			selected = append(selected, in)
		}
	}
	return f.fetchInstruments(ctx, "index", selected)
}

func (f *Fetcher) fetchInstruments(ctx context.Context, kind string, list []instrument) []models.ItemResult {
	results := make([]models.ItemResult, len(list))
	fanOut(ctx, len(list), f.concurrency, func(ctx context.Context, i int) {
		in := list[i]
		results[i] = models.ItemResult{Key: in.Symbol}
		q, err := f.fetchQuote(ctx, kind, in.Symbol)
		if err != nil {
			results[i].Error = err.Error()
			return
		}
		rec := q.Record(in.Group, in.Name)
		results[i].Record = &rec
	})
	return results
}
