package catalog

import (
	"context"
	"fmt"

	"mulligan/core/httpclient"
	"mulligan/core/progress"
	"mulligan/core/storage"
	"mulligan/feature/catalog/assets"
	"mulligan/feature/catalog/filter"
	"mulligan/feature/catalog/pipeline"
	"mulligan/feature/catalog/source"
	"mulligan/feature/catalog/store"

	"go.uber.org/zap"
)

// Deps are the collaborators a pipeline is assembled from.
type Deps struct {
	Sync      pipeline.Config
	Storage   storage.Config
	Store     *store.CardStore
	Allowlist *filter.Provider
	Logger    *zap.Logger
	Sinks     []progress.Sink
}

// LoadAllowlist reads the configured allow-list file, or builds the allow-list from
// the configured sets when no file is set.
func LoadAllowlist(cfg pipeline.Config) (*filter.Allowlist, error) {
	if cfg.AllowlistPath != "" {
		return filter.LoadAllowlist(cfg.AllowlistPath)
	}
	a := filter.NewAllowlist(cfg.AllowlistVersion, cfg.AllowlistSets)
	if a.Len() == 0 {
		return nil, fmt.Errorf("built-in allow-list %s has no sets", cfg.AllowlistVersion)
	}
	return a, nil
}

// NewAssetBackend creates the configured image backend. The s3 backend ensures the
// bucket exists.
func NewAssetBackend(ctx context.Context, syncCfg pipeline.Config, storageCfg storage.Config) (assets.Backend, error) {
	switch syncCfg.AssetBackend {
	case pipeline.BackendFS:
		return assets.NewFSBackend(syncCfg.AssetDir), nil
	case pipeline.BackendS3:
		client, err := storage.NewClient(storageCfg)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx, client, storageCfg.Bucket, storageCfg.Region); err != nil {
			return nil, err
		}
		return assets.NewS3Backend(client, storageCfg.Bucket, storageCfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown asset backend %q", syncCfg.AssetBackend)
	}
}

// BuildPipeline assembles a pipeline from configuration.
func BuildPipeline(ctx context.Context, d Deps) (*pipeline.Pipeline, error) {
	if err := d.Sync.Validate(); err != nil {
		return nil, err
	}

	backend, err := NewAssetBackend(ctx, d.Sync, d.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset backend: %w", err)
	}

	fetcher := source.NewHTTPFetcher(httpclient.New(d.Sync.SourceTimeout()), d.Sync.SourceURL, d.Sync.SourceTimeout())
	cache := assets.NewCache(backend,
		assets.NewHTTPDownloader(httpclient.New(d.Sync.AssetTimeout())),
		d.Sync.ImageURL,
		d.Logger,
		assets.WithVerify(d.Sync.VerifyImages),
		assets.WithTimeout(d.Sync.AssetTimeout()),
	)

	sinks := append([]progress.Sink{progress.LogSink{Logger: d.Logger}}, d.Sinks...)
	return pipeline.New(fetcher, d.Store, cache, d.Allowlist, d.Logger, sinks...), nil
}
