package pipeline

import (
	"fmt"
	"time"
)

// Config holds the sync section of the application configuration.
type Config struct {
	// Locale is synchronized when no locale is given on the command line.
	Locale string `mapstructure:"locale" default:"enUS"`
	// Format is the legality format: standard, wild or all.
	Format string `mapstructure:"format" default:"standard"`
	// BatchSize is the number of records committed per flush.
	BatchSize int `mapstructure:"batch_size" default:"20"`
	// Workers bounds concurrent image downloads.
	Workers int `mapstructure:"workers" default:"4"`
	// SourceURL is the snapshot URL template with a {locale} placeholder.
	SourceURL string `mapstructure:"source_url" default:"https://api.hearthstonejson.com/v1/latest/{locale}/cards.collectible.json"`
	// ImageURL is the image URL template with {locale} and {key} placeholders.
	ImageURL string `mapstructure:"image_url" default:"https://art.hearthstonejson.com/v1/render/latest/{locale}/256x/{key}.png"`
	// AssetBackend selects where images are cached: fs or s3.
	AssetBackend string `mapstructure:"asset_backend" default:"fs"`
	// AssetDir is the root directory of the fs backend.
	AssetDir string `mapstructure:"asset_dir" default:"data/images"`
	// SourceTimeoutSeconds bounds the snapshot download.
	SourceTimeoutSeconds int `mapstructure:"source_timeout_seconds" default:"60"`
	// AssetTimeoutSeconds bounds each image resolution.
	AssetTimeoutSeconds int `mapstructure:"asset_timeout_seconds" default:"15"`
	// VerifyImages stores the image path only when the image is actually present.
	VerifyImages bool `mapstructure:"verify_images" default:"false"`
	// AllowlistPath points at the YAML allow-list. Empty uses AllowlistSets.
	AllowlistPath string `mapstructure:"allowlist_path" default:""`
	// AllowlistVersion names the built-in allow-list.
	AllowlistVersion string `mapstructure:"allowlist_version" default:"builtin"`
	// AllowlistSets is the built-in allow-list, comma separated in the environment.
	AllowlistSets []string `mapstructure:"allowlist_sets" default:"CORE,EVENT"`
}

// Asset backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// SourceTimeout returns the snapshot deadline.
func (c Config) SourceTimeout() time.Duration {
	return seconds(c.SourceTimeoutSeconds, 60)
}

// AssetTimeout returns the per-image deadline.
func (c Config) AssetTimeout() time.Duration {
	return seconds(c.AssetTimeoutSeconds, 15)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// Validate checks values that would make a run impossible.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("sync.batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("sync.workers must be positive, got %d", c.Workers)
	}
	if c.SourceURL == "" {
		return fmt.Errorf("sync.source_url is required")
	}
	switch c.AssetBackend {
	case BackendFS, BackendS3:
	default:
		return fmt.Errorf("unknown sync.asset_backend %q", c.AssetBackend)
	}
	return nil
}
