package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AssetFetchError describes a failed image resolution. It is logged, never returned by Ensure.
type AssetFetchError struct {
	URL  string
	Path string
	Err  error
}

func (e *AssetFetchError) Error() string {
	return fmt.Sprintf("asset %s from %s: %v", e.Path, e.URL, e.Err)
}

func (e *AssetFetchError) Unwrap() error { return e.Err }

// Outcome tells what Ensure did.
type Outcome int

const (
	// Cached means the object was already present.
	Cached Outcome = iota
	// Fetched means the image was downloaded and stored.
	Fetched
	// Failed means the image could not be resolved.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Cached:
		return "cached"
	case Fetched:
		return "fetched"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Target names the image of one record.
type Target struct {
	Locale     string
	DisplayKey string
}

// Result is returned by Ensure. Path is the value to store as the record's image path.
type Result struct {
	Path    *string
	Outcome Outcome
	Err     error
}

// ValidDisplayKey reports whether key can name an image file inside its locale folder.
func ValidDisplayKey(key string) bool {
	return key != "" && key != "." && !strings.Contains(key, "..") && !strings.ContainsAny(key, `/\`)
}

// RelativePath returns "{locale}/{display_key}.png". The key must satisfy ValidDisplayKey.
func RelativePath(locale, displayKey string) string {
	return path.Join(locale, displayKey+".png")
}

// Option configures a Cache.
type Option func(*Cache)

// WithVerify makes Ensure return a path only when the object exists or was stored.
// Without it the expected path is returned even when fetching failed.
func WithVerify(verify bool) Option {
	return func(c *Cache) { c.verify = verify }
}

// WithTimeout bounds each Ensure call.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// Cache resolves record images against a Backend.
type Cache struct {
	backend     Backend
	downloader  Downloader
	urlTemplate string
	logger      *zap.Logger
	verify      bool
	timeout     time.Duration
	group       singleflight.Group
}

// NewCache creates a cache. urlTemplate carries {locale} and {key} placeholders.
func NewCache(backend Backend, downloader Downloader, urlTemplate string, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		backend:     backend,
		downloader:  downloader,
		urlTemplate: urlTemplate,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the image URL of a target.
func (c *Cache) URL(t Target) string {
	return strings.NewReplacer("{locale}", t.Locale, "{key}", t.DisplayKey).Replace(c.urlTemplate)
}

// Ensure makes sure the image of t is present, downloading it when the record is new or
// the backend lacks it. It never fails; see Result.Err for the logged failure.
func (c *Cache) Ensure(ctx context.Context, t Target, isNew bool) Result {
	url := c.URL(t)
	if !ValidDisplayKey(t.DisplayKey) || !ValidDisplayKey(t.Locale) {
		err := &AssetFetchError{URL: url, Err: fmt.Errorf("unsafe image path %q/%q", t.Locale, t.DisplayKey)}
		c.logger.Warn("Asset fetch failed", zap.String("url", url), zap.Error(err))
		return Result{Outcome: Failed, Err: err}
	}
	rel := RelativePath(t.Locale, t.DisplayKey)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if !isNew {
		exists, err := c.backend.Exists(ctx, rel)
		if err != nil {
			c.logger.Debug("Asset presence check failed, fetching", zap.String("path", rel), zap.Error(err))
		} else if exists {
			return Result{Path: &rel, Outcome: Cached}
		}
	}

	_, err, _ := c.group.Do(rel, func() (any, error) {
		data, err := c.downloader.Download(ctx, url)
		if err != nil {
			return nil, err
		}
		return nil, c.backend.Put(ctx, rel, data)
	})
	if err == nil {
		return Result{Path: &rel, Outcome: Fetched}
	}

	fetchErr := &AssetFetchError{URL: url, Path: rel, Err: err}
	if errors.Is(err, context.Canceled) {
		c.logger.Debug("Asset fetch cancelled", zap.String("path", rel))
	} else {
		c.logger.Warn("Asset fetch failed", zap.String("path", rel), zap.String("url", url), zap.Error(err))
	}

	res := Result{Outcome: Failed, Err: fetchErr}
	if !c.verify {
		res.Path = &rel
	}
	return res
}
