package cmd

import (
	"fmt"

	"mulligan/core/broker"
	"mulligan/core/config"
	"mulligan/core/database"
	"mulligan/core/logger"
	"mulligan/core/progress"
	"mulligan/feature/catalog"
	"mulligan/feature/catalog/filter"
	"mulligan/feature/catalog/store"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// env holds what every catalog command needs.
type env struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store.CardStore
	allowlist *filter.Provider
	sinks     []progress.Sink
	nc        *nats.Conn
}

// bootstrap loads configuration and opens the database. Flag overrides must already
// be applied through adjust.
func bootstrap(adjust func(*config.Config)) (*env, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if adjust != nil {
		adjust(cfg)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	st := store.NewCardStore(db)
	if err := st.AutoMigrate(); err != nil {
		return nil, err
	}

	allow, err := catalog.LoadAllowlist(cfg.Sync)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:       cfg,
		logger:    l,
		store:     st,
		allowlist: filter.NewProvider(allow),
	}

	// Progress publishing is optional; a broker outage never blocks a sync.
	if cfg.Broker.Enabled() {
		nc, err := broker.Connect(cfg.Broker)
		if err != nil {
			l.Warn("Progress broker unavailable", zap.String("url", cfg.Broker.URL), zap.Error(err))
		} else {
			e.nc = nc
			e.sinks = append(e.sinks, broker.NewPublisher(nc, cfg.Broker.Subject))
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.nc != nil {
		_ = e.nc.Drain()
	}
	_ = e.logger.Sync()
}
