// Package broker publishes sync progress events to NATS.
//
// Publishing is optional: when broker.url is empty no connection is made and the
// Publisher is not registered as a progress sink.
package broker
