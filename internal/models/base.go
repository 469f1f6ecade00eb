package models

import (
	"time"

	"billplan/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Every entity is a versioned
// record: Version is checked on update so that concurrent writers cannot
// silently overwrite each other.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 and initializes the version counter
// for new records.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	return nil
}
