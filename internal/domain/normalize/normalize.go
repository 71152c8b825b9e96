// Package normalize turns a player's raw revision records into a display-ready series.
//
// Normalization order: drop sentinel Values, parse Value, parse LowHI, cut the date,
// resolve duplicate dates, sort newest first, then derive the current and lowest handicap.
package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/internal/domain/naming"
)

// lowHISentinel marks a LowHI that does not apply.
const lowHISentinel = 999.0

var (
	valueSentinelNumbers = []float64{999.0, 99.9}
	valueSentinelStrings = []string{"999.0", "99.9"}
)

// CollisionPolicy decides which revision survives when a player has two on the same date.
type CollisionPolicy string

// Collision policies. Document order is the order of handicap_revisions.
const (
	// KeepFirst keeps the first revision in document order.
	KeepFirst CollisionPolicy = "first"
	// KeepLast keeps the last revision in document order.
	KeepLast CollisionPolicy = "last"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithCollisionPolicy sets the duplicate-date policy. Unknown values are ignored.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(n *Normalizer) {
		if p == KeepFirst || p == KeepLast {
			n.policy = p
		}
	}
}

// Normalizer converts raw revisions into a model.PlayerSeries. It holds no state
// between calls and is safe for concurrent use.
type Normalizer struct {
	policy CollisionPolicy
}

// New creates a Normalizer. The default collision policy is KeepFirst.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{policy: KeepFirst}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Policy returns the configured collision policy.
func (n *Normalizer) Policy() CollisionPolicy { return n.policy }

// NormalizeDocument parses doc and normalizes its revisions.
func (n *Normalizer) NormalizeDocument(player string, doc []byte) (model.PlayerSeries, error) {
	raws, err := ParseDocument(player, doc)
	if err != nil {
		return model.PlayerSeries{}, err
	}
	return n.Normalize(player, raws)
}

// Normalize builds the series of player from raws. A non-numeric, non-sentinel Value or a
// malformed RevDate fails the whole series with a *ParseError.
func (n *Normalizer) Normalize(player string, raws []model.RawRevision) (model.PlayerSeries, error) {
	series := model.PlayerSeries{
		Name:    player,
		Slug:    naming.Slug(player),
		Entries: make([]model.HandicapEntry, 0, len(raws)),
	}

	byDate := make(map[string]int, len(raws))
	for i, raw := range raws {
		if isValueSentinel(raw.Value) {
			series.Discarded++
			continue
		}
		value, err := parseValue(raw.Value)
		if err != nil {
			return model.PlayerSeries{}, &ParseError{Player: player, Index: i, Field: FieldValue, Raw: raw.Value.Text, Err: err}
		}
		date, err := revisionDate(raw.RevDate)
		if err != nil {
			return model.PlayerSeries{}, &ParseError{Player: player, Index: i, Field: FieldRevDate, Raw: raw.RevDate, Err: ErrInvalidDate}
		}
		entry := model.HandicapEntry{Date: date, Value: value, LowHI: parseLowHI(raw.LowHI)}

		if at, seen := byDate[date.String()]; seen {
			series.Collisions++
			if n.policy == KeepLast {
				series.Entries[at] = entry
			}
			continue
		}
		byDate[date.String()] = len(series.Entries)
		series.Entries = append(series.Entries, entry)
	}

	sort.SliceStable(series.Entries, func(i, j int) bool {
		return series.Entries[i].Date.After(series.Entries[j].Date)
	})

	if len(series.Entries) > 0 {
		series.CurrentHandicap = series.Entries[0].Value
	}
	series.LowestHandicap = LowestHandicap(raws)
	return series, nil
}

// LowestHandicap is the minimum applicable LowHI over every raw revision, including those
// whose Value is a sentinel. It is 0 when no revision carries an applicable LowHI.
func LowestHandicap(raws []model.RawRevision) float64 {
	lowest, found := 0.0, false
	for _, raw := range raws {
		low := parseLowHI(raw.LowHI)
		if low == nil {
			continue
		}
		if !found || *low < lowest {
			lowest, found = *low, true
		}
	}
	return lowest
}

func isValueSentinel(v model.RawValue) bool {
	switch v.Kind {
	case model.RawNumber:
		for _, s := range valueSentinelNumbers {
			if v.Num == s {
				return true
			}
		}
	case model.RawString:
		for _, s := range valueSentinelStrings {
			if v.Text == s {
				return true
			}
		}
	}
	return false
}

func parseValue(v model.RawValue) (float64, error) {
	switch v.Kind {
	case model.RawNumber:
		if !isFinite(v.Num) {
			return 0, ErrInvalidNumber
		}
		return v.Num, nil
	case model.RawString:
		f, ok := parseFinite(v.Text)
		if !ok {
			return 0, ErrInvalidNumber
		}
		return f, nil
	default:
		return 0, ErrInvalidNumber
	}
}

// parseLowHI returns nil for absent, null, unparseable or sentinel values.
func parseLowHI(v model.RawValue) *float64 {
	var f float64
	switch v.Kind {
	case model.RawNumber:
		if !isFinite(v.Num) {
			return nil
		}
		f = v.Num
	case model.RawString:
		parsed, ok := parseFinite(v.Text)
		if !ok {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f == lowHISentinel {
		return nil
	}
	return &f
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// revisionDate keeps the calendar part of an ISO-8601 timestamp.
func revisionDate(revDate string) (model.Date, error) {
	day, _, _ := strings.Cut(strings.TrimSpace(revDate), "T")
	if len(day) > len(model.DateLayout) {
		day = day[:len(model.DateLayout)]
	}
	return model.ParseDate(day)
}
