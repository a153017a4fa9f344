package pipeline

import (
	"context"
	"fmt"
	"time"

	"mulligan/feature/catalog/assets"
	"mulligan/feature/catalog/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UnknownName is stored when the upstream record has no name.
const UnknownName = "Unknown"

// RecordValidationError marks an upstream record that cannot be reconciled. The record is
// skipped and the run continues.
type RecordValidationError struct {
	Index      int
	DisplayKey string
	Reason     string
}

func (e *RecordValidationError) Error() string {
	return fmt.Sprintf("record %d (%q): %s", e.Index, e.DisplayKey, e.Reason)
}

// Validate checks the fields required to reconcile src.
func Validate(index int, src models.SourceCard) error {
	if !src.HasExternalID {
		return &RecordValidationError{Index: index, DisplayKey: src.DisplayKey, Reason: "missing numeric external id"}
	}
	if src.DisplayKey == "" {
		return &RecordValidationError{Index: index, DisplayKey: src.DisplayKey, Reason: "missing display key"}
	}
	if !assets.ValidDisplayKey(src.DisplayKey) {
		return &RecordValidationError{Index: index, DisplayKey: src.DisplayKey, Reason: "display key is not a safe file name"}
	}
	return nil
}

// Lookup finds persisted records by key.
type Lookup interface {
	FindByKey(ctx context.Context, key models.Key) (*models.CardRecord, error)
}

// Outcome is the result of reconciling one record.
type Outcome struct {
	Record *models.CardRecord
	// Created is true when no record existed under the key before this run.
	Created bool
	// Duplicate is true when the key was already reconciled in the current batch.
	// The returned Record is the one already staged.
	Duplicate bool
	// DisplayKeyChanged is set for duplicates whose display key differs from the staged one.
	DisplayKeyChanged bool
}

type seenEntry struct {
	record  *models.CardRecord
	created bool
}

// Reconciler maps upstream records onto persisted entities of one locale.
// Entities handed out since the last Reset are kept in an identity cache so
// repeated keys resolve to the same entity.
type Reconciler struct {
	lookup Lookup
	locale string
	seen   map[models.Key]seenEntry
	now    func() time.Time
	newID  func() string
}

// NewReconciler creates a reconciler for locale.
func NewReconciler(lookup Lookup, locale string) *Reconciler {
	return &Reconciler{
		lookup: lookup,
		locale: locale,
		seen:   make(map[models.Key]seenEntry),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Reconcile validates src, resolves its entity and overwrites the mutable fields.
// A *RecordValidationError means src must be skipped; any other error comes from the store.
func (r *Reconciler) Reconcile(ctx context.Context, index int, src models.SourceCard) (Outcome, error) {
	if err := Validate(index, src); err != nil {
		return Outcome{}, err
	}

	key := models.Key{ExternalID: src.ExternalID, Locale: r.locale}
	if entry, ok := r.seen[key]; ok {
		prev := entry.record.DisplayKey
		apply(entry.record, src)
		return Outcome{
			Record:            entry.record,
			Created:           entry.created,
			Duplicate:         true,
			DisplayKeyChanged: prev != entry.record.DisplayKey,
		}, nil
	}

	rec, err := r.lookup.FindByKey(ctx, key)
	if err != nil {
		return Outcome{}, err
	}
	created := rec == nil
	if created {
		rec = &models.CardRecord{
			ID:         r.newID(),
			ExternalID: key.ExternalID,
			Locale:     key.Locale,
			ImportedAt: r.now().UTC(),
		}
	}
	apply(rec, src)

	r.seen[key] = seenEntry{record: rec, created: created}
	return Outcome{Record: rec, Created: created}, nil
}

// Reset releases the identity cache. It is called after every flush.
func (r *Reconciler) Reset() {
	clear(r.seen)
}

// Cached returns the number of entities in the identity cache.
func (r *Reconciler) Cached() int {
	return len(r.seen)
}

func apply(rec *models.CardRecord, src models.SourceCard) {
	rec.DisplayKey = src.DisplayKey
	rec.Name = src.Name
	if rec.Name == "" {
		rec.Name = UnknownName
	}
	rec.LegalitySetID = src.SetID
	rec.Rarity = src.Rarity
	rec.Type = src.Type
	rec.ClassTag = src.ClassTag
	rec.RawPayload = datatypes.JSON(src.Raw)
}
