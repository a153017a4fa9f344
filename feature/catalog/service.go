package catalog

import (
	"context"
	"sync"

	"mulligan/core/progress"
	"mulligan/feature/catalog/models"
	"mulligan/feature/catalog/pipeline"
	"mulligan/feature/catalog/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner executes sync runs.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (pipeline.Summary, error)
}

// Service handles catalog reads and background sync runs.
type Service struct {
	store  *store.CardStore
	runner Runner
	status *progress.Status
	cfg    pipeline.Config
	logger *zap.Logger

	// ctx bounds background runs; cancelling it aborts them.
	ctx context.Context
	wg  sync.WaitGroup
}

// NewService creates a catalog service. status must also be a sink of runner so that
// progress reaches the status endpoint.
func NewService(ctx context.Context, st *store.CardStore, runner Runner, status *progress.Status, cfg pipeline.Config, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		runner: runner,
		status: status,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
	}
}

// ListCards returns a page of records.
func (s *Service) ListCards(ctx context.Context, q store.ListQuery) ([]models.CardRecord, int64, error) {
	return s.store.List(ctx, q)
}

// GetCard returns one record or nil.
func (s *Service) GetCard(ctx context.Context, key models.Key) (*models.CardRecord, error) {
	return s.store.FindByKey(ctx, key)
}

// Status returns the state of the latest run.
func (s *Service) Status() progress.Snapshot {
	return s.status.Snapshot()
}

// StartSync launches a run for locale in the background. It returns false when a run
// is already in progress.
func (s *Service) StartSync(locale, format string) (string, bool) {
	if !s.status.TryBegin() {
		return "", false
	}
	if format == "" {
		format = s.cfg.Format
	}
	opts := pipeline.Options{
		RunID:     uuid.NewString(),
		Locale:    locale,
		Format:    format,
		BatchSize: s.cfg.BatchSize,
		Workers:   s.cfg.Workers,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		summary, err := s.runner.Run(s.ctx, opts)
		s.status.End(string(summary.State), err)
		if err != nil {
			s.logger.Error("Background sync failed", zap.String("run_id", opts.RunID), zap.Error(err))
		}
	}()
	return opts.RunID, true
}

// Wait blocks until background runs have returned.
func (s *Service) Wait() {
	s.wg.Wait()
}
