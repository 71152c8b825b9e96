package report

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/handicap/internal/domain/model"
)

const tolerance = 1e-9

// Finding is the outcome of one property check.
type Finding struct {
	Check  string
	Player string
	OK     bool
	Detail string
}

// Result gathers every finding of a check run.
type Result struct {
	Findings []Finding
}

// Failed counts the findings that did not hold.
func (r *Result) Failed() int {
	n := 0
	for _, f := range r.Findings {
		if !f.OK {
			n++
		}
	}
	return n
}

func (r *Result) add(check, player string, ok bool, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Check: check, Player: player, OK: ok, Detail: fmt.Sprintf(format, args...)})
}

// Check reads every view of a running service and verifies that they agree with one another.
func Check(ctx context.Context, c *Client) (*Result, error) {
	overview, err := c.Players(ctx)
	if err != nil {
		return nil, err
	}
	players := make([]PlayerView, 0, len(overview))
	for _, s := range overview {
		p, err := c.Player(ctx, s.Slug)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	chart, err := c.Chart(ctx)
	if err != nil {
		return nil, err
	}
	yearly, err := c.Yearly(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, p := range players {
		checkPlayer(res, p)
	}
	checkYearly(res, players, yearly)
	checkChart(res, players, chart)
	return res, nil
}

func checkPlayer(res *Result, p PlayerView) {
	sorted := true
	for i := 1; i < len(p.Entries); i++ {
		if !p.Entries[i-1].Date.After(p.Entries[i].Date) {
			sorted = false
			break
		}
	}
	res.add("entries newest first", p.Name, sorted, "%d entries", len(p.Entries))
	res.add("entry count", p.Name, len(p.Entries) == p.EntryCount, "listed %d, summary %d", len(p.Entries), p.EntryCount)

	current := 0.0
	if len(p.Entries) > 0 {
		current = p.Entries[0].Value
	}
	res.add("current handicap", p.Name, current == p.CurrentHandicap, "newest %v, summary %v", current, p.CurrentHandicap)

	level := 0.0
	if p.LowestHandicap != 0 {
		level = (p.CurrentHandicap - p.LowestHandicap) / p.LowestHandicap * 100
	}
	res.add("sandbagger level", p.Name, math.Abs(level-p.SandbaggerLevel) < tolerance, "expected %.4f, got %.4f", level, p.SandbaggerLevel)

	sum := 0
	for _, yc := range p.YearCounts {
		sum += yc.Count
	}
	res.add("year counts sum", p.Name, sum == len(p.Entries), "sum %d, entries %d", sum, len(p.Entries))
}

func checkYearly(res *Result, players []PlayerView, m model.YearlyMatrix) {
	desc := true
	for i := 1; i < len(m.Years); i++ {
		if m.Years[i-1] <= m.Years[i] {
			desc = false
			break
		}
	}
	res.add("yearly years descending", "", desc, "%v", m.Years)

	byName := make(map[string]PlayerView, len(players))
	for _, p := range players {
		byName[p.Name] = p
	}
	for _, row := range m.Rows {
		sum := 0
		for _, c := range row.Counts {
			sum += c
		}
		p, ok := byName[row.Player]
		res.add("yearly row sum", row.Player, ok && sum == len(p.Entries) && len(row.Counts) == len(m.Years),
			"sum %d, entries %d", sum, len(p.Entries))
	}
}

func checkChart(res *Result, players []PlayerView, chart ChartView) {
	dates := make(map[string]struct{})
	values := make(map[string]map[string]float64, len(players))
	for _, p := range players {
		values[p.Name] = make(map[string]float64, len(p.Entries))
		for _, e := range p.Entries {
			dates[e.Date.String()] = struct{}{}
			values[p.Name][e.Date.String()] = e.Value
		}
	}
	res.add("chart row count", "", len(chart.Rows) == len(dates), "rows %d, distinct dates %d", len(chart.Rows), len(dates))

	asc := true
	for i := 1; i < len(chart.Rows); i++ {
		if !chart.Rows[i-1].Date.Before(chart.Rows[i].Date) {
			asc = false
			break
		}
	}
	res.add("chart rows ascending", "", asc, "%d rows", len(chart.Rows))

	for _, p := range players {
		name, byDate := p.Name, values[p.Name]
		ok := true
		for _, row := range chart.Rows {
			want, has := byDate[row.Date.String()]
			got, present := row.Values[name]
			if has != present || (has && want != got) {
				ok = false
				break
			}
		}
		res.add("chart cells match entries", name, ok, "%d entries", len(byDate))
	}
}
