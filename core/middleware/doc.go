// Package middleware groups the Fiber middleware mounted in front of the catalog API.
//
// # Components
//
//   - rayid: Tags every request with an id. An incoming X-Ray-ID header is reused,
//     otherwise a UUID is generated. The id is stored under the "ray_id" local and
//     echoed in the X-Ray-ID response header so log lines can be joined to requests.
//   - auth: Requires the configured key in the X-API-Key header, compared in constant
//     time. Mismatches get a 401 JSON error. An empty configured key disables the check.
package middleware
