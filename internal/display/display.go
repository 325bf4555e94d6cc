// Package display renders market data and session history as terminal tables.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/dyike/FinAgentGo/models"
	"github.com/dyike/FinAgentGo/pkg/dataflows"
)

const missing = "n/a"

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		MarginTop(1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	gainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render(s))
}

// Decimal formats an optional value with the given number of places.
func Decimal(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return missing
	}
	return d.Decimal.StringFixed(places)
}

// Percent formats an optional change percent with a sign and a colour.
func Percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return mutedStyle.Render(missing)
	}
	s := d.Decimal.StringFixed(2) + "%"
	switch d.Decimal.Sign() {
	case 1:
		return gainStyle.Render("+" + s)
	case -1:
		return lossStyle.Render(s)
	}
	return s
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missing
	}
	return s
}

func Movers(w io.Writer, records []models.MarketRecord) {
	title(w, fmt.Sprintf("Market movers (%d)", len(records)))
	t := newTable("#", "Symbol", "Name", "Market cap", "Price", "Change", "Volume", "Sector")
	for i, r := range records {
		t.Row(
			fmt.Sprint(i+1),
			r.Symbol,
			r.DisplayName,
			orMissing(r.Metric("market_cap")),
			Decimal(r.Price, 2),
			Percent(r.ChangePercent),
			orMissing(r.Metric("volume")),
			orMissing(r.Metric("sector")),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// Items renders a batch of per-item results. Failed items keep their row and
// show the error in place of the quote.
func Items(w io.Writer, heading string, items []models.ItemResult) {
	title(w, heading)
	t := newTable("Symbol", "Name", "Price", "Change", "Change %")
	for _, it := range items {
		if it.Record == nil {
			t.Row(it.Key, errorStyle.Render(it.Error), missing, missing, missing)
			continue
		}
		r := it.Record
		t.Row(r.Symbol, r.DisplayName, Decimal(r.Price, 2), Decimal(r.Change, 2), Percent(r.ChangePercent))
	}
	fmt.Fprintln(w, t.Render())
}

// Commodities renders results in the order the names were requested.
func Commodities(w io.Writer, names []string, results map[string]dataflows.CommodityResult) {
	title(w, "Commodities")
	t := newTable("Commodity", "Symbol", "Price", "Change %", "Error")
	for _, name := range names {
		res, ok := results[name]
		if !ok {
			continue
		}
		if res.Err != nil {
			t.Row(name, missing, missing, missing, errorStyle.Render(dataflows.ErrorKind(res.Err)))
			continue
		}
		t.Row(name, res.Record.Symbol, Decimal(res.Record.Price, 2), Percent(res.Record.ChangePercent), "")
	}
	fmt.Fprintln(w, t.Render())
}

func Sectors(w io.Writer, snap dataflows.SectorSnapshot) {
	title(w, fmt.Sprintf("Sectors: %s (%d up, %d down)", snap.Tone, snap.Advancers, snap.Decliners))
	t := newTable("ETF", "Sector", "Price", "Change %")
	for _, r := range snap.Ranked {
		t.Row(r.Symbol, r.DisplayName, Decimal(r.Price, 2), Percent(r.ChangePercent))
	}
	for _, f := range snap.Failed {
		t.Row(f.Key, errorStyle.Render(f.Error), missing, missing)
	}
	fmt.Fprintln(w, t.Render())
}

func Yields(w io.Writer, curve dataflows.YieldCurve) {
	heading := "Treasury yields"
	if curve.Spread10y3m.Valid {
		heading += fmt.Sprintf(", 10y-3m spread %s pts", curve.Spread10y3m.Decimal.StringFixed(2))
	}
	if curve.Inverted {
		heading += " " + lossStyle.Render("(inverted)")
	}
	Items(w, heading, curve.Yields)
}

func Sessions(w io.Writer, page *models.SessionPage) {
	title(w, "Sessions")
	t := newTable("Session", "User", "Status", "Started", "Updated")
	for _, s := range page.Sessions {
		t.Row(s.ID, fmt.Sprint(s.UserID), s.Status,
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w, t.Render())
	if page.NextCursor > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("more: --cursor %d", page.NextCursor)))
	}
}

var roleStyles = map[string]lipgloss.Style{
	"user":      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
	"assistant": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
	"system":    errorStyle,
}

// Transcript prints a stored session message by message, in sequence order.
func Transcript(w io.Writer, session *models.SessionRecord, messages []models.MessageRecord) {
	title(w, fmt.Sprintf("Session %s (user %d, %s)", session.ID, session.UserID, session.Status))
	sorted := append([]models.MessageRecord(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	for _, m := range sorted {
		style, ok := roleStyles[m.Role]
		if !ok {
			style = mutedStyle
		}
		label := m.Role
		if m.Status != "" && m.Status != "done" {
			label += " [" + m.Status + "]"
		}
		fmt.Fprintf(w, "%s %s\n", style.Render(label+":"), m.Content)
	}
}
