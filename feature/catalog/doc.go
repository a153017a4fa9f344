// Package catalog exposes the card catalog and its synchronization over HTTP.
//
// # Routes
//
//	GET  /cards/:locale               list records (set, limit, offset query params)
//	GET  /cards/:locale/:external_id  one record
//	GET  /sync/status                 state and last progress event of the latest run
//	POST /sync/:locale                start a run in the background (format query param)
//
// Only one run may be in progress; a second POST answers 409 Conflict.
//
// The sub-packages hold the sync itself: source fetches the snapshot, filter applies the
// legality format, pipeline reconciles and batches, assets caches images and store
// persists records.
package catalog
