package models

import (
	"time"

	"gorm.io/datatypes"
)

// CardRecord is the persisted catalog entry for one card in one locale.
// (ExternalID, Locale) is the reconciliation key.
type CardRecord struct {
	ID                string         `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	ExternalID        int64          `gorm:"column:external_id;not null;uniqueIndex:idx_card_external_locale,priority:1" json:"external_id"`
	Locale            string         `gorm:"column:locale;type:varchar(10);not null;uniqueIndex:idx_card_external_locale,priority:2" json:"locale"`
	DisplayKey        string         `gorm:"column:display_key;type:varchar(64);not null;index" json:"display_key"`
	Name              string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Rarity            *string        `gorm:"column:rarity;type:varchar(32)" json:"rarity"`
	Type              *string        `gorm:"column:type;type:varchar(32)" json:"type"`
	ClassTag          *string        `gorm:"column:class_tag;type:varchar(32)" json:"class_tag"`
	LegalitySetID     *string        `gorm:"column:legality_set_id;type:varchar(64);index" json:"legality_set_id"`
	RawPayload        datatypes.JSON `gorm:"column:raw_payload" json:"raw_payload"`
	ImageRelativePath *string        `gorm:"column:image_relative_path;type:varchar(255)" json:"image_relative_path"`
	ImportedAt        time.Time      `gorm:"column:imported_at;not null" json:"imported_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name.
func (CardRecord) TableName() string {
	return "card_records"
}

// Key returns the reconciliation key of the record.
func (c *CardRecord) Key() Key {
	return Key{ExternalID: c.ExternalID, Locale: c.Locale}
}

// Key identifies a card within the catalog.
type Key struct {
	ExternalID int64
	Locale     string
}

// MutableColumns lists the columns overwritten on every sync.
// id, external_id, locale and imported_at are never part of it.
var MutableColumns = []string{
	"display_key",
	"name",
	"rarity",
	"type",
	"class_tag",
	"legality_set_id",
	"raw_payload",
	"image_relative_path",
	"updated_at",
}
