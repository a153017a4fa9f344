// Package batch buffers items and commits them in fixed-size units.
//
// A Persister accumulates staged items under a single mutex. When the staging set reaches
// the configured size it is flushed automatically: an optional barrier runs first (used to
// wait for background work whose results must land on staged items), then the whole set is handed
// to the Committer as one unit, the set is cleared and the flush hooks run.
//
// A failed commit is reported as *FlushError and leaves the staged items in place. There is
// no rollback across flushes: items committed by earlier flushes stay committed.
//
// # Usage
//
//	p, err := batch.New[*models.CardRecord](20, committer,
//	    batch.WithBarrier[*models.CardRecord](pool.Wait),
//	    batch.WithFlushHook[*models.CardRecord](func(s batch.FlushStats) { ... }),
//	)
//	flushed, err := p.Stage(ctx, rec)
//	...
//	err = p.Close(ctx) // final flush
package batch
