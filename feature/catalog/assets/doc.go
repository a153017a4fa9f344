// Package assets caches one rendered image per catalog record.
//
// Caching is presence based: an image is downloaded when the record was just created or
// when the backend has no object at the record's relative path. An existing object is
// never compared with upstream, so a changed upstream rendering stays stale until the
// object is removed from the backend.
//
// Image failures never reach the caller of Cache.Ensure. They are logged as
// AssetFetchError and the run continues.
//
// Two backends are provided: FSBackend writes below a local directory, S3Backend writes
// to a bucket through storage.Client.
package assets
