// Package models defines the catalog data types.
//
//   - CardRecord: the persisted GORM model, unique on (external_id, locale).
//   - SourceCard: one upstream snapshot element with its raw JSON retained.
package models
