package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dyike/FinAgentGo/models"
)

var commoditySymbols = map[string]string{
	"gold":        "GC=F",
	"silver":      "SI=F",
	"copper":      "HG=F",
	"natural gas": "NG=F",
	"brent crude": "BZ=F",
	"crude oil":   "CL=F",
}

// CommodityNames lists the supported commodity names in sorted order.
func CommodityNames() []string {
	names := make([]string, 0, len(commoditySymbols))
	for name := range commoditySymbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommoditySymbol resolves a commodity name case-insensitively.
func CommoditySymbol(name string) (string, bool) {
	sym, ok := commoditySymbols[strings.ToLower(strings.TrimSpace(name))]
	return sym, ok
}

// CommodityResult is the outcome for one requested commodity. Exactly one of
// Record and Err is set.
type CommodityResult struct {
	Name   string
	Record *models.MarketRecord
	Err    error
}

func (r CommodityResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Name      string               `json:"name"`
		Record    *models.MarketRecord `json:"record,omitempty"`
		Error     string               `json:"error,omitempty"`
		ErrorKind string               `json:"error_kind,omitempty"`
	}{Name: r.Name, Record: r.Record}
	if r.Err != nil {
		out.Error = r.Err.Error()
		out.ErrorKind = ErrorKind(r.Err)
	}
	return json.Marshal(out)
}

// FetchCommodities returns one result per requested name, keyed by the name
// as given. Unknown names fail with ErrUnknownCommodity without touching the
// provider.
func (f *Fetcher) FetchCommodities(ctx context.Context, names []string) map[string]CommodityResult {
	results := make(map[string]CommodityResult, len(names))
	var mu sync.Mutex

	fanOut(ctx, len(names), f.concurrency, func(ctx context.Context, i int) {
		name := names[i]
		res := f.fetchCommodity(ctx, name)
		mu.Lock()
		results[name] = res
		mu.Unlock()
	})
	return results
}

func (f *Fetcher) fetchCommodity(ctx context.Context, name string) CommodityResult {
	symbol, ok := CommoditySymbol(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownCommodity, name)
		f.observer.ObserveFetch("commodity", err)
		return CommodityResult{Name: name, Err: err}
	}
	q, err := f.fetchQuote(ctx, "commodity", symbol)
	if err != nil {
		return CommodityResult{Name: name, Err: err}
	}
	rec := q.Record(models.GroupCommodity, canonicalCommodityName(name))
	rec.Symbol = symbol
	return CommodityResult{Name: name, Record: &rec}
}

func canonicalCommodityName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
