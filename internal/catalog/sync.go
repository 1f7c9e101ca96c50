package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/metrics"
	"github.com/starford/starsys/internal/sse"
)

// ErrNoFetcher is returned by Sync when the service has no upstream.
var ErrNoFetcher = errors.New("catalog: no archive fetcher configured")

// SyncStatus describes the latest sync run.
type SyncStatus struct {
	RunID      string     `json:"run_id,omitempty"`
	Running    bool       `json:"running"`
	Completed  bool       `json:"completed"`
	Count      int        `json:"count"`
	Failed     int        `json:"failed"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// SyncReport is the outcome of one Sync call.
type SyncReport struct {
	RunID    string        `json:"run_id"`
	Fetched  int           `json:"fetched"`
	Saved    int           `json:"saved"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration_ns"`
}

// SyncStatus returns a snapshot of the latest sync run.
func (s *Service) SyncStatus() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Sync fetches every system from the archive and saves them as a batch.
// Only one sync runs at a time; a concurrent call gets
// apperr.ErrSyncInProgress. Per-system failures are reported in the report,
// not as an error.
func (s *Service) Sync(ctx context.Context) (SyncReport, error) {
	if s.fetcher == nil {
		return SyncReport{}, ErrNoFetcher
	}
	report, err := s.beginSync()
	if err != nil {
		return report, err
	}
	return s.runSync(ctx, report)
}

// StartSync begins a sync in its own goroutine and returns the status of the
// new run. It fails with apperr.ErrSyncInProgress like Sync. The run is
// detached from ctx cancellation; use Wait to join it.
func (s *Service) StartSync(ctx context.Context) (SyncStatus, error) {
	if s.fetcher == nil {
		return SyncStatus{}, ErrNoFetcher
	}
	report, err := s.beginSync()
	if err != nil {
		return s.SyncStatus(), err
	}
	status := s.SyncStatus()

	bgCtx := context.WithoutCancel(ctx)
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		_, _ = s.runSync(bgCtx, report)
	}()
	return status, nil
}

func (s *Service) runSync(ctx context.Context, report SyncReport) (SyncReport, error) {
	logger := s.logger.With(slog.String("run_id", report.RunID))
	logger.Info("sync started")
	s.events.PublishCatalogEvent(sse.EventSyncStarted, map[string]string{"run_id": report.RunID})

	start := time.Now()
	systems, err := s.fetcher.FetchSystems(ctx)
	if err != nil {
		return report, s.failSync(ctx, logger, report, start, err)
	}
	report.Fetched = len(systems)

	res, err := s.repo.SaveBatch(ctx, systems)
	report.Saved, report.Failed = res.Saved, res.Failed
	if err != nil {
		return report, s.failSync(ctx, logger, report, start, err)
	}
	report.Duration = time.Since(start)

	now := time.Now()
	s.mu.Lock()
	s.status.Running = false
	s.status.Completed = true
	s.status.Count = res.Saved
	s.status.Failed = res.Failed
	s.status.FinishedAt = &now
	s.mu.Unlock()

	s.metrics.RecordSync(metrics.ResultSuccess, res.Saved, res.Failed, report.Duration)
	s.events.PublishCatalogEvent(sse.EventSyncCompleted, report)
	s.publishSnapshot(ctx)

	logger.Info("sync completed",
		slog.Int("fetched", report.Fetched),
		slog.Int("saved", report.Saved),
		slog.Int("failed", report.Failed),
		slog.Duration("elapsed", report.Duration))
	return report, nil
}

func (s *Service) beginSync() (SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return SyncReport{}, apperr.ErrSyncInProgress
	}
	now := time.Now()
	s.status = SyncStatus{
		RunID:     uuid.NewString(),
		Running:   true,
		StartedAt: &now,
	}
	return SyncReport{RunID: s.status.RunID}, nil
}

// failSync records a failed run. Systems committed before the failure stay
// saved and are reported.
func (s *Service) failSync(ctx context.Context, logger *slog.Logger, report SyncReport, start time.Time, err error) error {
	elapsed := time.Since(start)
	now := time.Now()
	s.mu.Lock()
	s.status.Running = false
	s.status.Completed = false
	s.status.Count = report.Saved
	s.status.Failed = report.Failed
	s.status.Error = err.Error()
	s.status.FinishedAt = &now
	s.mu.Unlock()

	s.metrics.RecordSync(metrics.ResultError, report.Saved, report.Failed, elapsed)
	s.events.PublishCatalogEvent(sse.EventSyncFailed, map[string]any{
		"run_id": report.RunID,
		"saved":  report.Saved,
		"failed": report.Failed,
		"error":  err.Error(),
	})
	if report.Saved > 0 {
		s.publishSnapshot(context.WithoutCancel(ctx))
	}
	logger.Error("sync failed",
		slog.Int("saved", report.Saved),
		slog.Int("failed", report.Failed),
		slog.String("error", err.Error()))
	return err
}

// SyncInBackgroundIfEmpty starts a sync in its own goroutine when the
// catalog holds no systems. It reports whether a sync was started.
func (s *Service) SyncInBackgroundIfEmpty(ctx context.Context) (bool, error) {
	if s.fetcher == nil {
		return false, ErrNoFetcher
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Info("catalog not empty, skipping startup sync", slog.Int("systems", n))
		s.metrics.SetCatalogSize(n)
		return false, nil
	}

	if _, err := s.StartSync(ctx); err != nil {
		if errors.Is(err, apperr.ErrSyncInProgress) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Wait blocks until background work started by the service has finished.
func (s *Service) Wait() {
	s.bg.Wait()
}
