// Package source fetches the upstream card snapshot.
//
// The feed is a locale-parameterised HTTP endpoint returning a JSON array. Every call
// runs under its own deadline; transport failures, non-2xx answers and malformed JSON
// all surface as *FetchError and abort the run. Nothing is retried.
package source
