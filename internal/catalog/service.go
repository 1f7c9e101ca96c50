// Package catalog is the application service shared by the CLI, the HTTP API
// and the MCP server. It combines the repository, the search engine and the
// archive client, and reports changes to events and metrics sinks.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/csvio"
	"github.com/starford/starsys/internal/models"
	"github.com/starford/starsys/internal/repository"
	"github.com/starford/starsys/internal/search"
	"github.com/starford/starsys/internal/sse"
)

// Fetcher downloads the full set of systems from an upstream source.
type Fetcher interface {
	FetchSystems(ctx context.Context) ([]models.StarSystem, error)
}

// EventPublisher receives catalog change notifications.
type EventPublisher interface {
	PublishCatalogEvent(kind string, data any)
}

// Recorder receives sync and catalog-size measurements.
type Recorder interface {
	RecordSync(result string, saved, failed int, elapsed time.Duration)
	RecordBatch(saved, failed int)
	SetCatalogSize(n int)
}

// Service is the catalog application service.
type Service struct {
	repo    repository.Catalog
	fetcher Fetcher
	events  EventPublisher
	metrics Recorder
	logger  *slog.Logger

	mu     sync.Mutex
	status SyncStatus
	bg     sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher sets the upstream used by Sync.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithEvents sets the change notification sink.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithMetrics sets the measurement sink.
func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a catalog service over repo.
func NewService(repo repository.Catalog, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		events:  nopEvents{},
		metrics: nopRecorder{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query selects systems for List.
type Query struct {
	search.Criteria
	// Name is a case-insensitive substring; empty matches everything.
	Name string
	// Limit caps the result size; 0 means no limit.
	Limit int
}

// List loads all systems and narrows them by q.
func (s *Service) List(ctx context.Context, q Query) ([]models.StarSystem, error) {
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperr.ErrInvalidInput)
	}
	systems, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	systems = search.FilterSystems(systems, q.Criteria)
	if q.Name != "" {
		systems = search.SearchByName(systems, q.Name)
	}
	if q.Limit > 0 && len(systems) > q.Limit {
		systems = systems[:q.Limit]
	}
	return systems, nil
}

// Get returns the system with exactly this name.
func (s *Service) Get(ctx context.Context, name string) (*models.StarSystem, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	sys, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if sys == nil {
		return nil, fmt.Errorf("system %q: %w", name, apperr.ErrNotFound)
	}
	return sys, nil
}

// Stats computes statistics over the whole catalog.
func (s *Service) Stats(ctx context.Context) (search.Stats, error) {
	systems, err := s.repo.FindAll(ctx)
	if err != nil {
		return search.Stats{}, err
	}
	return search.GetStatistics(systems), nil
}

// Count returns the number of stored systems.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// PlanetQuery selects planets. Both criteria apply when set.
type PlanetQuery struct {
	// MinMass keeps planets strictly heavier, in Earth masses.
	MinMass *float64
	// Classification matches models.Classification case-insensitively.
	Classification string
}

// Planets lists planets across the catalog.
func (s *Service) Planets(ctx context.Context, q PlanetQuery) ([]search.PlanetMatch, error) {
	class := strings.TrimSpace(q.Classification)
	if class != "" && !isClassification(class) {
		return nil, fmt.Errorf("%w: unknown classification %q", apperr.ErrInvalidInput, q.Classification)
	}
	systems, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	minMass := math.Inf(-1)
	if q.MinMass != nil {
		minMass = *q.MinMass
	}
	matches := search.PlanetsAboveMass(systems, minMass)
	if class == "" {
		return matches, nil
	}
	out := matches[:0]
	for _, m := range matches {
		if strings.EqualFold(string(m.Planet.Classify()), class) {
			out = append(out, m)
		}
	}
	return out, nil
}

func isClassification(class string) bool {
	for _, c := range models.Classifications {
		if strings.EqualFold(string(c), class) {
			return true
		}
	}
	return false
}

// Import reads CSV from r and saves every system in it.
func (s *Service) Import(ctx context.Context, r io.Reader) (repository.BatchResult, error) {
	systems, err := csvio.Read(r)
	if err != nil {
		return repository.BatchResult{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	res, err := s.repo.SaveBatch(ctx, systems)
	if err != nil {
		return res, err
	}
	s.metrics.RecordBatch(res.Saved, res.Failed)
	s.events.PublishCatalogEvent(sse.EventCatalogImported, res)
	s.publishSnapshot(ctx)
	s.logger.Info("catalog import finished",
		slog.Int("saved", res.Saved),
		slog.Int("failed", res.Failed))
	return res, nil
}

// Export writes the whole catalog as CSV and returns the number of systems.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	systems, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := csvio.Write(w, systems); err != nil {
		return 0, err
	}
	return len(systems), nil
}

// Purge deletes every system and planet.
func (s *Service) Purge(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.events.PublishCatalogEvent(sse.EventCatalogPurged, nil)
	s.publishSnapshot(ctx)
	s.logger.Warn("catalog purged")
	return nil
}

// publishSnapshot recomputes statistics after a write, updates the size
// gauge and publishes the figures as a stats.updated event.
func (s *Service) publishSnapshot(ctx context.Context) {
	st, err := s.Stats(ctx)
	if err != nil {
		s.logger.Warn("stats after write failed", slog.String("error", err.Error()))
		return
	}
	s.metrics.SetCatalogSize(st.TotalSystems)
	s.events.PublishCatalogEvent(sse.EventStatsUpdated, st)
}

type nopEvents struct{}

func (nopEvents) PublishCatalogEvent(string, any) {}

type nopRecorder struct{}

func (nopRecorder) RecordSync(string, int, int, time.Duration) {}
func (nopRecorder) RecordBatch(int, int)                       {}
func (nopRecorder) SetCatalogSize(int)                         {}
