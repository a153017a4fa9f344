package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mulligan/feature/catalog/models"
)

// maxSnapshotBytes caps the snapshot body read into memory.
const maxSnapshotBytes = 256 << 20

// Fetcher retrieves the raw card snapshot for a locale.
type Fetcher interface {
	Fetch(ctx context.Context, locale string) ([]models.SourceCard, error)
}

// FetchError reports an unreachable or unparseable snapshot. It is fatal to the run.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPFetcher downloads the snapshot with a single GET per call.
type HTTPFetcher struct {
	client      *http.Client
	urlTemplate string
	timeout     time.Duration
	maxBytes    int64
}

// NewHTTPFetcher creates a fetcher. urlTemplate must contain the {locale} placeholder.
func NewHTTPFetcher(client *http.Client, urlTemplate string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:      client,
		urlTemplate: urlTemplate,
		timeout:     timeout,
		maxBytes:    maxSnapshotBytes,
	}
}

// URL returns the snapshot URL for locale.
func (f *HTTPFetcher) URL(locale string) string {
	return strings.ReplaceAll(f.urlTemplate, "{locale}", locale)
}

// Fetch performs one retrieval under the configured deadline. There is no retry.
func (f *HTTPFetcher) Fetch(ctx context.Context, locale string) ([]models.SourceCard, error) {
	u := f.URL(locale)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("snapshot exceeds %d bytes", f.maxBytes)}
	}

	cards, err := Decode(body, locale)
	if err != nil {
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode, Err: err}
	}
	return cards, nil
}

// Decode parses a snapshot body: a JSON array of card objects.
// An element that is not an object makes the whole snapshot unparseable.
func Decode(body []byte, locale string) ([]models.SourceCard, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("snapshot is not a JSON array: %w", err)
	}

	cards := make([]models.SourceCard, 0, len(elems))
	for i, raw := range elems {
		card, err := models.ParseSourceCard(raw, locale)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}
