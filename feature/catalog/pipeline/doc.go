// Package pipeline runs one catalog synchronization for a locale.
//
// A run moves through these states:
//
//	INIT → FETCHING → FILTERING → RECONCILING → ASSET_CACHING → STAGING
//	     → [FLUSHING] → … → FINAL_FLUSH → DONE
//
// and ends early in FETCH_FAILED, LOOKUP_FAILED, FLUSH_FAILED or CANCELLED.
//
// Records are reconciled and staged sequentially in snapshot order. Image resolution for
// each staged record runs on a bounded worker pool; a flush waits for the pool, copies the
// resolved image paths onto the staged records and commits them. Batches committed before
// a failure stay committed.
package pipeline
