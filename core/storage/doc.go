// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the small Client interface used by the card
// image cache when the s3 backend is selected. It supports both AWS S3 and self-hosted
// MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, which makes storage
// interactions easy to mock in unit tests (see core/storage/mocks).
//
// # Helpers
//
//   - EnsureBucket: Creates the target bucket when missing.
//   - ObjectExists: Presence check through a prefix listing limited to one key.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	ok, err := storage.ObjectExists(ctx, client, "cards", "images/enUS/CS2_029.png")
package storage
