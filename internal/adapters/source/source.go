// Package source fetches raw player documents from a directory or an HTTP location.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/handicap/internal/config"
	"github.com/okian/handicap/pkg/metrics"
)

// Source returns the raw document bytes of a player.
type Source interface {
	// Fetch returns the document of player. Missing documents yield ErrNotFound.
	Fetch(ctx context.Context, player string) ([]byte, error)
	// Kind names the source for logs and metrics.
	Kind() string
}

// FromConfig builds the Source selected by cfg.
func FromConfig(cfg *config.Config) (Source, error) {
	switch cfg.Source {
	case config.SourceFile:
		return NewFileSource(cfg.DataDir, WithSuffix(cfg.DocumentSuffix)), nil
	case config.SourceHTTP:
		return NewHTTPSource(cfg.BaseURL,
			WithSuffix(cfg.DocumentSuffix),
			WithTimeout(time.Duration(cfg.FetchTimeoutMS)*time.Millisecond),
		), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source)
	}
}

// observe records a finished fetch against the metrics registry.
func observe(kind string, start time.Time, err error, notFound bool) {
	outcome := metrics.OutcomeOK
	switch {
	case notFound:
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.RecordDocumentFetch(kind, outcome, float64(time.Since(start).Milliseconds()))
}
