package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// RawKind tells how a raw document field was encoded.
type RawKind int

// Raw field encodings.
const (
	RawAbsent RawKind = iota
	RawNull
	RawNumber
	RawString
	RawOther
)

// RawValue is a document field that may arrive as a number, a numeric string or null.
// It only lives inside the normalizer boundary.
type RawValue struct {
	Kind RawKind
	// Text is the raw token: the digits of a number or the contents of a string.
	Text string
	// Num is the decoded number when Kind is RawNumber.
	Num float64
}

// Number builds a numeric RawValue.
func Number(v float64, text string) RawValue { return RawValue{Kind: RawNumber, Num: v, Text: text} }

// Str builds a string RawValue.
func Str(s string) RawValue { return RawValue{Kind: RawString, Text: s} }

// Null builds an explicit JSON null.
func Null() RawValue { return RawValue{Kind: RawNull} }

// RawRevision is one revision record as received from a player document.
type RawRevision struct {
	RevDate string
	Value   RawValue
	LowHI   RawValue
}

// HandicapEntry is one normalized revision. LowHI is nil when not applicable.
type HandicapEntry struct {
	Date  Date     `json:"date"`
	Value float64  `json:"value"`
	LowHI *float64 `json:"lowHI"`
}

// PlayerSeries is a player's normalized history, newest entry first.
type PlayerSeries struct {
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Entries         []HandicapEntry `json:"entries"`
	CurrentHandicap float64         `json:"currentHandicap"`
	LowestHandicap  float64         `json:"lowestHandicap"`
	// Discarded counts revisions dropped for a sentinel Value.
	Discarded int `json:"discarded"`
	// Collisions counts revisions dropped because another revision owned the date.
	Collisions int `json:"collisions"`
}

// ChartRow is one date of the combined chart. Players without an entry on Date are absent
// from Values; a gap, not a zero.
type ChartRow struct {
	Date   Date
	Values map[string]float64
}

// MarshalJSON flattens the row into {"date": "...", "<player>": value, ...}.
func (r ChartRow) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(r.Values))
	for name := range r.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString(`{"date":`)
	date, err := r.Date.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(date)
	for _, name := range names {
		if name == "date" {
			continue
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[name])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the flattened form written by MarshalJSON.
func (r *ChartRow) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	out := ChartRow{Values: make(map[string]float64, len(fields))}
	for key, raw := range fields {
		if key == "date" {
			if err := json.Unmarshal(raw, &out.Date); err != nil {
				return err
			}
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		out.Values[key] = v
	}
	*r = out
	return nil
}

// YearlyRow is one player's update counts aligned to YearlyMatrix.Years.
type YearlyRow struct {
	Player string `json:"player"`
	Counts []int  `json:"counts"`
}

// YearlyMatrix is the year x player update-count table. Years are newest first.
type YearlyMatrix struct {
	Years []int       `json:"years"`
	Rows  []YearlyRow `json:"rows"`
}

// YearCount is one player's update count for a year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// PlayerSummary is the overview line of a player.
type PlayerSummary struct {
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	CurrentHandicap float64 `json:"currentHandicap"`
	LowestHandicap  float64 `json:"lowestHandicap"`
	SandbaggerLevel float64 `json:"sandbaggerLevel"`
	EntryCount      int     `json:"entryCount"`
}

// PlayerDetail is a player's summary with every entry and the per-year counts.
type PlayerDetail struct {
	PlayerSummary
	Entries    []HandicapEntry `json:"entries"`
	YearCounts []YearCount     `json:"yearCounts"`
}

// LowHIPlaceholder is displayed for an entry without a low handicap index.
const LowHIPlaceholder = "-"

// FormatHandicap renders a handicap index with one decimal.
func FormatHandicap(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

// FormatLowHI renders v with one decimal, or LowHIPlaceholder when nil.
func FormatLowHI(v *float64) string {
	if v == nil {
		return LowHIPlaceholder
	}
	return FormatHandicap(*v)
}
