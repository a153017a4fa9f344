package progress

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is a progress observation emitted after a flush or at completion.
type Event struct {
	RunID     string    `json:"run_id"`
	Locale    string    `json:"locale"`
	Format    string    `json:"format"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Percent   float64   `json:"percent"`
	Batch     int       `json:"batch"`
	Final     bool      `json:"final"`
	Time      time.Time `json:"time"`
}

// Sink receives progress events.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event) error

// Publish calls f(ctx, ev).
func (f SinkFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Percent returns processed/total*100 rounded to one decimal.
// A zero total reports 100 since there is nothing left to do.
func Percent(processed, total int) float64 {
	if total <= 0 {
		return 100
	}
	return math.Round(float64(processed)/float64(total)*1000) / 10
}

// Reporter computes progress events for one run.
type Reporter struct {
	runID  string
	locale string
	format string
	total  int
	sinks  []Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewReporter creates a reporter for a run over total filtered records.
func NewReporter(runID, locale, format string, total int, logger *zap.Logger, sinks ...Sink) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		runID:  runID,
		locale: locale,
		format: format,
		total:  total,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// Report builds the event for processed records after batch and publishes it to every sink.
func (r *Reporter) Report(ctx context.Context, processed, batch int, final bool) Event {
	ev := Event{
		RunID:     r.runID,
		Locale:    r.locale,
		Format:    r.format,
		Processed: processed,
		Total:     r.total,
		Percent:   Percent(processed, r.total),
		Batch:     batch,
		Final:     final,
		Time:      r.now().UTC(),
	}
	for _, s := range r.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			r.logger.Warn("Progress sink failed", zap.Error(err))
		}
	}
	return ev
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	Logger *zap.Logger
}

// Publish logs ev at info level.
func (s LogSink) Publish(_ context.Context, ev Event) error {
	s.Logger.Info("Sync progress",
		zap.String("locale", ev.Locale),
		zap.Int("processed", ev.Processed),
		zap.Int("total", ev.Total),
		zap.Float64("percent", ev.Percent),
		zap.Int("batch", ev.Batch),
		zap.Bool("final", ev.Final),
	)
	return nil
}

// Status keeps the most recent event and run state for polling.
type Status struct {
	mu      sync.RWMutex
	last    *Event
	state   string
	running bool
	err     string
}

// Snapshot is a copy of the Status contents.
type Snapshot struct {
	Running bool   `json:"running"`
	State   string `json:"state"`
	Error   string `json:"error,omitempty"`
	Last    *Event `json:"last,omitempty"`
}

// Publish records ev as the latest event.
func (s *Status) Publish(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := ev
	s.last = &e
	return nil
}

// TryBegin marks a run as started. It returns false when a run is already in progress.
func (s *Status) TryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.state = "RUNNING"
	s.err = ""
	s.last = nil
	return true
}

// End marks the run finished with its terminal state and optional error.
func (s *Status) End(state string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.state = state
	s.err = ""
	if err != nil {
		s.err = err.Error()
	}
}

// Snapshot returns a copy of the current status.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Running: s.running, State: s.state, Error: s.err}
	if s.last != nil {
		e := *s.last
		snap.Last = &e
	}
	return snap
}
