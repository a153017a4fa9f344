// Package filter narrows a card snapshot to a legality format.
//
// With format "standard" only records whose legality set is in the allow-list are kept.
// "wild", "all" and any other value keep every record; this asymmetry is intentional.
//
// The allow-list is external configuration: a YAML document
//
//	version: "2026.2"
//	sets: [CORE, EVENT, TITANS]
//
// loaded at start-up and optionally reloaded by a Watcher when the file changes. A run
// takes one snapshot of the Provider at its start, so a reload never affects a run in
// progress.
package filter
