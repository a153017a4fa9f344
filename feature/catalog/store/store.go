package store

import (
	"context"
	"errors"
	"fmt"

	"mulligan/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultListLimit and MaxListLimit bound List page sizes.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// CardStore reads and writes card records.
type CardStore struct {
	db *gorm.DB
}

// NewCardStore creates a store over db.
func NewCardStore(db *gorm.DB) *CardStore {
	return &CardStore{db: db}
}

// AutoMigrate creates or updates the card_records table and its key index.
func (s *CardStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&models.CardRecord{}); err != nil {
		return fmt.Errorf("failed to migrate card records: %w", err)
	}
	return nil
}

// FindByKey returns the record stored under key, or nil when there is none.
func (s *CardStore) FindByKey(ctx context.Context, key models.Key) (*models.CardRecord, error) {
	var rec models.CardRecord
	err := s.db.WithContext(ctx).
		Where("external_id = ? AND locale = ?", key.ExternalID, key.Locale).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up card %d/%s: %w", key.ExternalID, key.Locale, err)
	}
	return &rec, nil
}

// Commit stores the batch in a single transaction. Either every record is persisted or none.
func (s *CardStore) Commit(ctx context.Context, records []*models.CardRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}, {Name: "locale"}},
			DoUpdates: clause.AssignmentColumns(models.MutableColumns),
		}).Create(&records).Error
		if err != nil {
			return fmt.Errorf("failed to upsert %d card records: %w", len(records), err)
		}
		return nil
	})
}

// ListQuery selects a page of records of one locale.
type ListQuery struct {
	Locale string
	// Set filters by legality set id when not empty.
	Set    string
	Limit  int
	Offset int
}

// Normalize applies the default and maximum page size.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// List returns a page of records ordered by external id, and the total match count.
func (s *CardStore) List(ctx context.Context, q ListQuery) ([]models.CardRecord, int64, error) {
	q = q.Normalize()

	base := s.db.WithContext(ctx).Model(&models.CardRecord{}).Where("locale = ?", q.Locale)
	if q.Set != "" {
		base = base.Where("legality_set_id = ?", q.Set)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count card records: %w", err)
	}

	var records []models.CardRecord
	err := base.Session(&gorm.Session{}).
		Order("external_id ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list card records: %w", err)
	}
	return records, total, nil
}

// Count returns the number of records stored for locale.
func (s *CardStore) Count(ctx context.Context, locale string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.CardRecord{}).Where("locale = ?", locale).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count card records: %w", err)
	}
	return n, nil
}
