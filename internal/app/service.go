// Package service loads every player document once and serves the derived views.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/handicap/internal/adapters/source"
	"github.com/okian/handicap/internal/domain/aggregate"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/internal/domain/naming"
	"github.com/okian/handicap/internal/domain/normalize"
	"github.com/okian/handicap/pkg/logger"
	"github.com/okian/handicap/pkg/metrics"
)

// Snapshot is the result of one load cycle. It is never mutated after Load returns it.
type Snapshot struct {
	LoadID   string
	LoadedAt time.Time
	Duration time.Duration
	Series   []model.PlayerSeries
	Chart    []model.ChartRow
	Yearly   model.YearlyMatrix
}

// Service implements the read dependencies of the HTTP API.
type Service struct {
	mu sync.RWMutex

	source     source.Source
	normalizer *normalize.Normalizer
	players    []string
	policy     normalize.CollisionPolicy

	snapshot *Snapshot
	started  bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where player documents are read from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithPlayers sets the tracked players in display order.
func WithPlayers(players ...string) Option {
	return func(s *Service) {
		s.players = append([]string(nil), players...)
	}
}

// WithCollisionPolicy sets the duplicate-date policy of the normalizer.
func WithCollisionPolicy(p string) Option {
	return func(s *Service) {
		s.policy = normalize.CollisionPolicy(p)
	}
}

// New constructs a Service. Start must be called before the read methods.
func New(opts ...Option) *Service {
	s := &Service{policy: normalize.KeepFirst}
	for _, opt := range opts {
		opt(s)
	}
	s.normalizer = normalize.New(normalize.WithCollisionPolicy(s.policy))
	return s
}

// Start performs the single load of the process. A failed load fails Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	snap, err := s.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.started = true
	return nil
}

// Stop releases the snapshot.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.snapshot = nil
	s.started = false
	s.logger.Info(context.Background(), "handicap service stopped")
}

// Load fetches and normalizes every player document in parallel, then aggregates.
// Any failing player fails the whole load and no partial snapshot is produced.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	log := s.log()
	if s.source == nil {
		return nil, ErrNoSource
	}
	if len(s.players) == 0 {
		return nil, ErrNoPlayers
	}

	start := time.Now()
	loadID := uuid.NewString()
	log = log.With(logger.String("load_id", loadID))
	log.Info(ctx, "loading handicap documents",
		logger.String("source", s.source.Kind()),
		logger.Strings("players", s.players),
	)

	series := make([]model.PlayerSeries, len(s.players))
	g, gctx := errgroup.WithContext(ctx)
	for i, player := range s.players {
		g.Go(func() error {
			doc, err := s.source.Fetch(gctx, player)
			if err != nil {
				return fmt.Errorf("load %s: %w", player, err)
			}
			ps, err := s.normalizer.NormalizeDocument(player, doc)
			if err != nil {
				metrics.RecordParseFailure(player)
				return fmt.Errorf("load %s: %w", player, err)
			}
			metrics.RecordRevisionsDiscarded(player, "sentinel", ps.Discarded)
			metrics.RecordRevisionsDiscarded(player, "duplicate_date", ps.Collisions)
			log.Debug(gctx, "player normalized",
				logger.String("player", player),
				logger.Int("entries", len(ps.Entries)),
				logger.Int("discarded", ps.Discarded),
				logger.Int("collisions", ps.Collisions),
			)
			series[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		elapsed := time.Since(start)
		metrics.RecordLoadFailure(float64(elapsed.Milliseconds()))
		log.Error(ctx, "load failed", logger.Error(err), logger.Duration("elapsed", elapsed))
		return nil, err
	}

	snap := &Snapshot{
		LoadID:   loadID,
		LoadedAt: time.Now().UTC(),
		Series:   series,
		Chart:    aggregate.ChartTable(series),
		Yearly:   aggregate.Yearly(series),
	}
	snap.Duration = time.Since(start)

	counts := make(map[string]int, len(series))
	for _, ps := range series {
		counts[ps.Name] = len(ps.Entries)
	}
	metrics.RecordLoad(float64(snap.Duration.Milliseconds()), snap.LoadedAt.Unix(), counts)
	log.Info(ctx, "handicap documents loaded",
		logger.Int("players", len(series)),
		logger.Int("chart_rows", len(snap.Chart)),
		logger.Duration("elapsed", snap.Duration),
	)
	return snap, nil
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Nop()
	}
	return s.logger
}

// Snapshot returns the current snapshot or ErrNotLoaded.
func (s *Service) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNotLoaded
	}
	return s.snapshot, nil
}

// Overview returns one summary per player in display order.
func (s *Service) Overview(_ context.Context) ([]model.PlayerSummary, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]model.PlayerSummary, len(snap.Series))
	for i, ps := range snap.Series {
		out[i] = summarize(ps)
	}
	return out, nil
}

// Player returns the detail view of the player named by ref (name, folded name or slug).
func (s *Service) Player(_ context.Context, ref string) (model.PlayerDetail, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return model.PlayerDetail{}, err
	}
	for _, ps := range snap.Series {
		if naming.Matches(ps.Name, ref) {
			return model.PlayerDetail{
				PlayerSummary: summarize(ps),
				Entries:       ps.Entries,
				YearCounts:    aggregate.YearCounts(ps),
			}, nil
		}
	}
	return model.PlayerDetail{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, ref)
}

// Chart returns the combined chart rows within [start, end]; nil bounds are open.
func (s *Service) Chart(_ context.Context, start, end *model.Date) ([]model.ChartRow, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidRange
	}
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return aggregate.FilterRange(snap.Chart, start, end), nil
}

// Players returns the player names in display order.
func (s *Service) Players(_ context.Context) ([]string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(snap.Series))
	for i, ps := range snap.Series {
		names[i] = ps.Name
	}
	return names, nil
}

// Yearly returns the year x player update matrix.
func (s *Service) Yearly(_ context.Context) (model.YearlyMatrix, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return model.YearlyMatrix{}, err
	}
	return snap.Yearly, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"players":         len(s.players),
		"collisionPolicy": string(s.normalizer.Policy()),
	}
	if s.source != nil {
		stats["source"] = s.source.Kind()
	}
	if snap := s.snapshot; snap != nil {
		entries := 0
		for _, ps := range snap.Series {
			entries += len(ps.Entries)
		}
		stats["loadId"] = snap.LoadID
		stats["loadedAt"] = snap.LoadedAt.Format(time.RFC3339)
		stats["loadDurationMs"] = snap.Duration.Milliseconds()
		stats["chartRows"] = len(snap.Chart)
		stats["entries"] = entries
		stats["years"] = len(snap.Yearly.Years)
	}
	return stats
}

func summarize(ps model.PlayerSeries) model.PlayerSummary {
	return model.PlayerSummary{
		Name:            ps.Name,
		Slug:            ps.Slug,
		CurrentHandicap: ps.CurrentHandicap,
		LowestHandicap:  ps.LowestHandicap,
		SandbaggerLevel: aggregate.SandbaggerLevel(ps),
		EntryCount:      len(ps.Entries),
	}
}
