// Package store persists catalog records with GORM.
//
// CardStore is the committer behind each batch flush: one transaction per batch, each
// record upserted on its (external_id, locale) key. Identity columns and imported_at are
// written on insert only. Records are never deleted.
package store
