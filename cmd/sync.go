package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mulligan/core/config"
	"mulligan/feature/catalog"
	"mulligan/feature/catalog/pipeline"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	// Flags for sync cards command
	syncLocale    string
	syncFormat    string
	syncBatchSize int
	syncWorkers   int
	verifyImages  bool
	allowlistPath string
)

// syncCmd is the parent command for synchronization runs.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize catalog data from upstream",
}

// syncCardsCmd runs one card catalog synchronization.
var syncCardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Fetch the card snapshot and upsert it into the catalog",
	Long: `Fetch the upstream card snapshot for one locale, keep the cards legal in the
selected format, upsert them in batches and cache their images.

Exits with status 1 when the snapshot cannot be fetched, a batch cannot be committed
or the run is interrupted. Batches committed before the failure are kept.

Examples:
  # Standard cards in English
  sync cards

  # Every card in German, 100 per transaction
  sync cards --locale deDE --format all --batch-size 100`,
	RunE: runSyncCards,
}

func init() {
	f := syncCardsCmd.Flags()
	f.StringVar(&syncLocale, "locale", "enUS", "Locale to synchronize")
	f.StringVar(&syncFormat, "format", "standard", "Legality format (standard, wild, all)")
	f.IntVar(&syncBatchSize, "batch-size", 20, "Records committed per transaction")
	f.IntVar(&syncWorkers, "workers", 4, "Concurrent image downloads")
	f.BoolVar(&verifyImages, "verify-images", false, "Store the image path only when the image is present")
	f.StringVar(&allowlistPath, "allowlist", "", "Path to the YAML allow-list")

	syncCmd.AddCommand(syncCardsCmd)
	RootCmd.AddCommand(syncCmd)
}

// applySyncFlags copies explicitly set flags over the configuration.
func applySyncFlags(flags *pflag.FlagSet, cfg *pipeline.Config) {
	if flags.Changed("locale") || cfg.Locale == "" {
		cfg.Locale = syncLocale
	}
	if flags.Changed("format") || cfg.Format == "" {
		cfg.Format = syncFormat
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = syncBatchSize
	}
	if flags.Changed("workers") {
		cfg.Workers = syncWorkers
	}
	if flags.Changed("verify-images") {
		cfg.VerifyImages = verifyImages
	}
	if flags.Changed("allowlist") {
		cfg.AllowlistPath = allowlistPath
	}
}

func runSyncCards(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := bootstrap(func(cfg *config.Config) { applySyncFlags(cmd.Flags(), &cfg.Sync) })
	if err != nil {
		return err
	}
	defer e.close()

	p, err := catalog.BuildPipeline(ctx, catalog.Deps{
		Sync:      e.cfg.Sync,
		Storage:   e.cfg.Storage,
		Store:     e.store,
		Allowlist: e.allowlist,
		Logger:    e.logger,
		Sinks:     e.sinks,
	})
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx, pipeline.Options{
		Locale:    e.cfg.Sync.Locale,
		Format:    e.cfg.Sync.Format,
		BatchSize: e.cfg.Sync.BatchSize,
		Workers:   e.cfg.Sync.Workers,
	})
	e.logger.Info("Sync summary",
		zap.String("state", string(summary.State)),
		zap.String("allowlist_version", summary.AllowlistVersion),
		zap.Int("fetched", summary.Fetched),
		zap.Int("filtered", summary.Filtered),
		zap.Int("skipped", summary.Skipped),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("created", summary.Created),
		zap.Int("committed", summary.Committed),
		zap.Int("flushes", summary.Flushes),
		zap.Int("assets_fetched", summary.AssetsFetched),
		zap.Int("assets_cached", summary.AssetsCached),
		zap.Int("assets_failed", summary.AssetsFailed),
		zap.Any("set_counts", summary.SetCounts),
	)
	return err
}
