// Package progress derives completion counters for a sync run and fans them out to sinks.
//
// The Reporter holds only the run total; every Report call computes the
// processed/total percentage (rounded to one decimal) and hands an Event to each Sink.
// Sinks are observers: their errors are logged and never change control flow.
//
// Available sinks:
//   - LogSink: one structured zap line per event.
//   - Status: the latest event kept in memory, polled by the HTTP API.
//   - broker.Publisher (core/broker): JSON event published on a NATS subject.
package progress
