// Package aggregate combines normalized player series into chart and table views.
package aggregate

import (
	"sort"

	"github.com/okian/handicap/internal/domain/model"
)

// ChartTable merges every player's entries into one row per distinct date, oldest first.
// A player with no entry on a date has no key in that row. When a series repeats a date,
// the later entry overwrites the earlier one.
func ChartTable(series []model.PlayerSeries) []model.ChartRow {
	index := make(map[string]int)
	rows := make([]model.ChartRow, 0)
	for _, s := range series {
		for _, e := range s.Entries {
			key := e.Date.String()
			at, ok := index[key]
			if !ok {
				at = len(rows)
				index[key] = at
				rows = append(rows, model.ChartRow{Date: e.Date, Values: make(map[string]float64, len(series))})
			}
			rows[at].Values[s.Name] = e.Value
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// Yearly counts entries per player per calendar year. Years are every distinct year seen
// across all players, newest first; empty cells are kept as 0.
func Yearly(series []model.PlayerSeries) model.YearlyMatrix {
	seen := make(map[int]struct{})
	for _, s := range series {
		for _, e := range s.Entries {
			seen[e.Date.Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	column := make(map[int]int, len(years))
	for i, y := range years {
		column[y] = i
	}

	rows := make([]model.YearlyRow, len(series))
	for i, s := range series {
		counts := make([]int, len(years))
		for _, e := range s.Entries {
			counts[column[e.Date.Year()]]++
		}
		rows[i] = model.YearlyRow{Player: s.Name, Counts: counts}
	}
	return model.YearlyMatrix{Years: years, Rows: rows}
}

// YearCounts is the single-player view of Yearly, newest year first.
func YearCounts(s model.PlayerSeries) []model.YearCount {
	m := Yearly([]model.PlayerSeries{s})
	out := make([]model.YearCount, len(m.Years))
	for i, y := range m.Years {
		out[i] = model.YearCount{Year: y, Count: m.Rows[0].Counts[i]}
	}
	return out
}

// SandbaggerLevel is how far the current handicap sits above the lowest, in percent of
// the lowest. It is 0 when the lowest handicap is 0.
func SandbaggerLevel(s model.PlayerSeries) float64 {
	if s.LowestHandicap == 0 {
		return 0
	}
	return (s.CurrentHandicap - s.LowestHandicap) / s.LowestHandicap * 100
}

// FilterRange keeps rows whose date lies in [start, end]. A nil bound is unbounded.
// The input slice is not modified.
func FilterRange(rows []model.ChartRow, start, end *model.Date) []model.ChartRow {
	out := make([]model.ChartRow, 0, len(rows))
	for _, r := range rows {
		if start != nil && r.Date.Before(*start) {
			continue
		}
		if end != nil && r.Date.After(*end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
