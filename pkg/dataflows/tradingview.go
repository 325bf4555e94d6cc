package dataflows

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyike/FinAgentGo/config"
	"github.com/dyike/FinAgentGo/models"
	"github.com/go-resty/resty/v2"
)

const (
	defaultMoversRows = 10
	moversMinCells    = 12
)

// moversColumns names cells 1..11 of a movers row; cell 0 holds symbol and name.
var moversColumns = []string{
	"market_cap",
	"price",
	"change_percent",
	"volume",
	"rel_volume",
	"p_e_ratio",
	"eps_dil_ttm",
	"eps_dil_growth_ttm_yoy",
	"div_yield_percent_ttm",
	"sector",
	"analyst_rating",
}

// MoversScraper reads the TradingView market movers table.
type MoversScraper struct {
	client     *resty.Client
	defaultURL string
	maxRows    int
	observer   Observer
}

type ScraperOption func(*MoversScraper)

func WithScraperObserver(o Observer) ScraperOption {
	return func(s *MoversScraper) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithHTTPClient(client *resty.Client) ScraperOption {
	return func(s *MoversScraper) {
		if client != nil {
			s.client = client
		}
	}
}

func NewMoversScraper(cfg *config.Config, opts ...ScraperOption) *MoversScraper {
	client := resty.New()
	client.SetTimeout(cfg.FetchTimeout())
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")

	s := &MoversScraper{
		client:     client,
		defaultURL: cfg.MarketMoversURL,
		maxRows:    cfg.MoversMaxRows,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeMarketMovers fetches url, parses the first table on the page and
// returns at most maxRows records ranked by market cap, largest first.
// An empty url falls back to the configured page; maxRows <= 0 falls back to
// the configured row count, or 10.
func (s *MoversScraper) ScrapeMarketMovers(ctx context.Context, url string, maxRows int) (records []models.MarketRecord, err error) {
	start := time.Now()
	defer func() { s.observer.ObserveScrape(time.Since(start), err) }()

	if strings.TrimSpace(url) == "" {
		url = s.defaultURL
	}
	if maxRows <= 0 {
		maxRows = s.maxRows
	}
	if maxRows <= 0 {
		maxRows = defaultMoversRows
	}

	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrNetworkFailure, url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrNetworkFailure, url, resp.StatusCode())
	}

	table, err := ParseMoversTable(resp.Body())
	if err != nil {
		return nil, err
	}
	return RankMovers(table, maxRows), nil
}

// ParseMoversTable extracts the raw cell text of every row in the first
// table's tbody.
func ParseMoversTable(body []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrStructureNotFound, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table on page", ErrStructureNotFound)
	}
	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, fmt.Errorf("%w: table has no tbody", ErrStructureNotFound)
	}
	rows := tbody.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("%w: table has no rows", ErrStructureNotFound)
	}

	parsed := make([][]string, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, cellText(cell))
		})
		parsed = append(parsed, texts)
	})
	return parsed, nil
}

// RankMovers converts table rows into records, skipping rows with fewer than
// 12 cells, and keeps the maxRows largest by market cap. Equal market caps
// keep their table order.
func RankMovers(table [][]string, maxRows int) []models.MarketRecord {
	type ranked struct {
		record    models.MarketRecord
		magnitude float64
	}

	items := make([]ranked, 0, len(table))
	for _, cells := range table {
		if len(cells) < moversMinCells {
			continue
		}
		rec := moverRecord(cells)
		items = append(items, ranked{record: rec, magnitude: ParseMagnitude(cells[1])})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].magnitude > items[j].magnitude
	})

	if maxRows > 0 && len(items) > maxRows {
		items = items[:maxRows]
	}
	out := make([]models.MarketRecord, len(items))
	for i := range items {
		out[i] = items[i].record
	}
	return out
}

func moverRecord(cells []string) models.MarketRecord {
	symbol, name := SplitSymbolName(cells[0])
	extra := make(map[string]string, len(moversColumns))
	for i, key := range moversColumns {
		extra[key] = cells[i+1]
	}
	return models.MarketRecord{
		Symbol:        symbol,
		DisplayName:   name,
		Price:         ParseNullDecimal(cells[2]),
		ChangePercent: ParseNullDecimal(cells[3]),
		Group:         models.GroupSector,
		ExtraMetrics:  extra,
	}
}

// SplitSymbolName treats the first whitespace-delimited token as the ticker
// and the remainder as the company name. Tickers containing spaces are
// misparsed; the page has not shown any so far.
func SplitSymbolName(s string) (symbol, name string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// cellText joins the trimmed text nodes under sel with single spaces.
func cellText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}
