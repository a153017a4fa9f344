package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mulligan/core/batch"
	"mulligan/core/progress"
	"mulligan/feature/catalog/assets"
	"mulligan/feature/catalog/filter"
	"mulligan/feature/catalog/models"
	"mulligan/feature/catalog/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store is the persistence side of a run.
type Store interface {
	Lookup
	batch.Committer[*models.CardRecord]
}

// AssetResolver resolves the image of a record. It must not fail.
type AssetResolver interface {
	Ensure(ctx context.Context, t assets.Target, isNew bool) assets.Result
}

// Options parameterize one run.
type Options struct {
	// RunID identifies the run in progress events. Generated when empty.
	RunID     string
	Locale    string
	Format    string
	BatchSize int
	// Workers bounds concurrent image resolutions.
	Workers int
}

// Summary describes a finished run.
type Summary struct {
	RunID            string         `json:"run_id"`
	Locale           string         `json:"locale"`
	Format           string         `json:"format"`
	State            State          `json:"state"`
	AllowlistVersion string         `json:"allowlist_version,omitempty"`
	Fetched          int            `json:"fetched"`
	Filtered         int            `json:"filtered"`
	Skipped          int            `json:"skipped"`
	Duplicates       int            `json:"duplicates"`
	Staged           int            `json:"staged"`
	Created          int            `json:"created"`
	Committed        int            `json:"committed"`
	Flushes          int            `json:"flushes"`
	AssetsFetched    int            `json:"assets_fetched"`
	AssetsCached     int            `json:"assets_cached"`
	AssetsFailed     int            `json:"assets_failed"`
	SetCounts        map[string]int `json:"set_counts"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration"`
}

// Pipeline wires the sync components together.
type Pipeline struct {
	fetcher   source.Fetcher
	store     Store
	assets    AssetResolver
	allowlist *filter.Provider
	logger    *zap.Logger
	sinks     []progress.Sink
	now       func() time.Time
}

// New creates a pipeline. sinks receive a progress event after every flush.
func New(fetcher source.Fetcher, store Store, resolver AssetResolver, allowlist *filter.Provider, logger *zap.Logger, sinks ...progress.Sink) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		store:     store,
		assets:    resolver,
		allowlist: allowlist,
		logger:    logger,
		sinks:     sinks,
		now:       time.Now,
	}
}

type pendingImage struct {
	record *models.CardRecord
	target assets.Target
	result assets.Result
}

// run holds the mutable state of one Run call.
type run struct {
	p       *Pipeline
	ctx     context.Context
	logger  *zap.Logger
	workers int
	summary Summary

	group   *errgroup.Group
	mu      sync.Mutex
	pending []pendingImage
}

func (r *run) setState(s State) {
	if r.summary.State == s {
		return
	}
	r.summary.State = s
	r.logger.Debug("Sync state", zap.String("state", string(s)))
}

func (r *run) newGroup() {
	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	r.group = g
}

// resolve queues image resolution for rec. The target is copied so the task never
// reads the record itself.
func (r *run) resolve(rec *models.CardRecord, isNew bool) {
	target := assets.Target{Locale: rec.Locale, DisplayKey: rec.DisplayKey}
	r.group.Go(func() error {
		res := r.p.assets.Ensure(r.ctx, target, isNew)
		r.mu.Lock()
		r.pending = append(r.pending, pendingImage{record: rec, target: target, result: res})
		r.mu.Unlock()
		return nil
	})
}

// settle waits for queued image work and copies the results onto their records.
// Results for a display key the record no longer carries are dropped. It is the flush barrier.
func (r *run) settle(context.Context) error {
	err := r.group.Wait()
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, pi := range pending {
		switch pi.result.Outcome {
		case assets.Fetched:
			r.summary.AssetsFetched++
		case assets.Cached:
			r.summary.AssetsCached++
		case assets.Failed:
			r.summary.AssetsFailed++
		}
		if pi.result.Path != nil && pi.target.DisplayKey == pi.record.DisplayKey {
			pi.record.ImageRelativePath = pi.result.Path
		}
	}
	r.newGroup()
	return err
}

// Run executes one sync. The returned Summary is always populated, including on error.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.BatchSize <= 0 {
		return Summary{State: StateInit}, batch.ErrInvalidSize
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Format == "" {
		opts.Format = filter.FormatStandard
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	r := &run{
		p:       p,
		ctx:     ctx,
		workers: opts.Workers,
		logger: p.logger.With(
			zap.String("run_id", opts.RunID),
			zap.String("locale", opts.Locale),
			zap.String("format", opts.Format),
		),
		summary: Summary{
			RunID:     opts.RunID,
			Locale:    opts.Locale,
			Format:    opts.Format,
			State:     StateInit,
			StartedAt: p.now().UTC(),
		},
	}
	r.newGroup()

	err := r.execute(opts)
	r.summary.Duration = p.now().Sub(r.summary.StartedAt)

	if err != nil {
		r.logger.Error("Sync failed", zap.String("state", string(r.summary.State)), zap.Error(err))
		return r.summary, err
	}
	r.logger.Info("Sync completed",
		zap.Int("fetched", r.summary.Fetched),
		zap.Int("filtered", r.summary.Filtered),
		zap.Int("skipped", r.summary.Skipped),
		zap.Int("committed", r.summary.Committed),
		zap.Int("flushes", r.summary.Flushes),
		zap.Int("assets_failed", r.summary.AssetsFailed),
		zap.Duration("duration", r.summary.Duration),
	)
	return r.summary, nil
}

func (r *run) execute(opts Options) error {
	ctx := r.ctx

	r.setState(StateFetching)
	r.logger.Info("Fetching card snapshot")
	cards, err := r.p.fetcher.Fetch(ctx, opts.Locale)
	if err != nil {
		return r.fail(StateFetchFailed, err)
	}
	r.summary.Fetched = len(cards)

	r.setState(StateFiltering)
	var allow *filter.Allowlist
	if r.p.allowlist != nil {
		allow = r.p.allowlist.Current()
	}
	if allow != nil {
		r.summary.AllowlistVersion = allow.Version
	}
	res := filter.Apply(cards, opts.Format, allow)
	r.summary.Filtered = len(res.Records)
	r.summary.SetCounts = res.SetCounts
	r.logger.Info("Snapshot filtered",
		zap.Int("fetched", len(cards)),
		zap.Int("kept", len(res.Records)),
		zap.String("allowlist_version", r.summary.AllowlistVersion),
	)

	reporter := progress.NewReporter(opts.RunID, opts.Locale, opts.Format, len(res.Records), r.logger, r.p.sinks...)
	reconciler := NewReconciler(r.p.store, opts.Locale)
	reconciler.now = r.p.now
	finalReported := false

	persister, err := batch.New[*models.CardRecord](opts.BatchSize, r.p.store,
		batch.WithBarrier[*models.CardRecord](r.settle),
		batch.WithFlushHook[*models.CardRecord](func(s batch.FlushStats) {
			reconciler.Reset()
			r.summary.Flushes = s.Batch
			r.summary.Committed = s.Committed
			reporter.Report(ctx, s.Committed, s.Batch, s.Final)
			finalReported = s.Final
		}),
	)
	if err != nil {
		return err
	}

	for i, card := range res.Records {
		if err := ctx.Err(); err != nil {
			_ = r.settle(ctx)
			return r.fail(StateCancelled, err)
		}

		r.setState(StateReconciling)
		out, err := reconciler.Reconcile(ctx, i, card)
		var verr *RecordValidationError
		if errors.As(err, &verr) {
			r.summary.Skipped++
			r.logger.Warn("Skipping invalid card record", zap.Int("index", i), zap.Error(verr))
			continue
		}
		if err != nil {
			_ = r.settle(ctx)
			return r.fail(StateLookupFailed, fmt.Errorf("failed to reconcile card %d: %w", card.ExternalID, err))
		}

		if out.Duplicate {
			r.summary.Duplicates++
			r.logger.Debug("Duplicate card in snapshot", zap.Int64("external_id", card.ExternalID))
			if out.DisplayKeyChanged {
				r.setState(StateAssetCaching)
				r.resolve(out.Record, out.Created)
			}
			continue
		}
		if out.Created {
			r.summary.Created++
		}

		r.setState(StateAssetCaching)
		r.resolve(out.Record, out.Created)

		r.setState(StateStaging)
		if persister.Staged()+1 >= persister.Size() {
			r.setState(StateFlushing)
		}
		if _, err := persister.Stage(ctx, out.Record); err != nil {
			return r.failFlush(err)
		}
		r.summary.Staged++
	}

	r.setState(StateFinalFlush)
	if err := persister.Close(ctx); err != nil {
		return r.failFlush(err)
	}
	// Nothing was left to flush; completion is still reported.
	if !finalReported {
		reporter.Report(ctx, persister.Committed(), persister.Flushes(), true)
	}

	r.setState(StateDone)
	return nil
}

func (r *run) fail(state State, err error) error {
	if r.ctx.Err() != nil {
		state = StateCancelled
	}
	r.setState(state)
	return err
}

func (r *run) failFlush(err error) error {
	// The barrier may not have run when the commit itself failed.
	_ = r.group.Wait()
	return r.fail(StateFlushFailed, err)
}
