package dataflows

import (
	"context"
	"sort"

	"github.com/dyike/FinAgentGo/models"
)

var sectorETFs = []instrument{
	{"XLK", "Technology", models.GroupSector},
	{"XLF", "Financials", models.GroupSector},
	{"XLV", "Health Care", models.GroupSector},
	{"XLE", "Energy", models.GroupSector},
	{"XLY", "Consumer Discretionary", models.GroupSector},
	{"XLP", "Consumer Staples", models.GroupSector},
	{"XLI", "Industrials", models.GroupSector},
	{"XLB", "Materials", models.GroupSector},
	{"XLU", "Utilities", models.GroupSector},
	{"XLRE", "Real Estate", models.GroupSector},
	{"XLC", "Communication Services", models.GroupSector},
}

type Tone string

const (
	ToneRiskOn  Tone = "risk-on"
	ToneRiskOff Tone = "risk-off"
	ToneMixed   Tone = "mixed"
)

// SectorSnapshot is the input for a market tone read.
type SectorSnapshot struct {
	// Ranked holds sectors by change percent, leaders first.
	Ranked    []models.MarketRecord `json:"ranked"`
	Failed    []models.ItemResult   `json:"failed,omitempty"`
	Advancers int                   `json:"advancers"`
	Decliners int                   `json:"decliners"`
	Tone      Tone                  `json:"tone"`
}

func (f *Fetcher) FetchSectorPerformance(ctx context.Context) SectorSnapshot {
	var snap SectorSnapshot
	for _, res := range f.fetchInstruments(ctx, "sector", sectorETFs) {
		if res.Record == nil {
			snap.Failed = append(snap.Failed, res)
			continue
		}
		snap.Ranked = append(snap.Ranked, *res.Record)
	}

	sort.SliceStable(snap.Ranked, func(i, j int) bool {
		a, b := snap.Ranked[i].ChangePercent, snap.Ranked[j].ChangePercent
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Decimal.GreaterThan(b.Decimal)
	})

	for _, rec := range snap.Ranked {
		if !rec.ChangePercent.Valid {
			continue
		}
		switch rec.ChangePercent.Decimal.Sign() {
		case 1:
			snap.Advancers++
		case -1:
			snap.Decliners++
		}
	}
	snap.Tone = classifyTone(snap.Advancers, snap.Decliners)
	return snap
}

// classifyTone calls a two-thirds breadth majority in either direction.
func classifyTone(adv, dec int) Tone {
	total := adv + dec
	switch {
	case total == 0:
		return ToneMixed
	case adv*3 >= total*2:
		return ToneRiskOn
	case dec*3 >= total*2:
		return ToneRiskOff
	default:
		return ToneMixed
	}
}
