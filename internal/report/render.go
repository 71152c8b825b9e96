// Package report renders handicap views in the terminal and checks a running service.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okian/handicap/internal/domain/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2f6b3a")).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2f6b3a"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a4262c"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
}

func section(w io.Writer, title string, t fmt.Stringer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(title), t.String())
	return err
}

// RenderOverview prints one line per player.
func RenderOverview(w io.Writer, overview []model.PlayerSummary) error {
	t := newTable("Player", "Current", "Lowest", "Sandbagger", "Updates")
	for _, s := range overview {
		t.Row(
			s.Name,
			model.FormatHandicap(s.CurrentHandicap),
			model.FormatHandicap(s.LowestHandicap),
			model.FormatHandicap(s.SandbaggerLevel)+"%",
			strconv.Itoa(s.EntryCount),
		)
	}
	return section(w, "Players", t)
}

// RenderYearly prints the year x player update matrix.
func RenderYearly(w io.Writer, m model.YearlyMatrix) error {
	headers := make([]string, 0, len(m.Years)+1)
	headers = append(headers, "Player")
	for _, y := range m.Years {
		headers = append(headers, strconv.Itoa(y))
	}
	t := newTable(headers...)
	for _, r := range m.Rows {
		cells := make([]string, 0, len(r.Counts)+1)
		cells = append(cells, r.Player)
		for _, c := range r.Counts {
			cells = append(cells, strconv.Itoa(c))
		}
		t.Row(cells...)
	}
	return section(w, "Updates per year", t)
}

// RenderPlayer prints every entry of a player, newest first.
func RenderPlayer(w io.Writer, d model.PlayerDetail) error {
	t := newTable("Date", "Handicap", "Low HI")
	for _, e := range d.Entries {
		t.Row(e.Date.String(), model.FormatHandicap(e.Value), model.FormatLowHI(e.LowHI))
	}
	title := fmt.Sprintf("%s  current %s  lowest %s  sandbagger %s%%",
		d.Name,
		model.FormatHandicap(d.CurrentHandicap),
		model.FormatHandicap(d.LowestHandicap),
		model.FormatHandicap(d.SandbaggerLevel),
	)
	return section(w, title, t)
}

// RenderResult prints the findings of a check run.
func RenderResult(w io.Writer, r *Result) error {
	t := newTable("Check", "Player", "Status", "Detail")
	for _, f := range r.Findings {
		status := passStyle.Render("ok")
		if !f.OK {
			status = failStyle.Render("FAIL")
		}
		t.Row(f.Check, f.Player, status, f.Detail)
	}
	return section(w, fmt.Sprintf("%d checks, %d failed", len(r.Findings), r.Failed()), t)
}
