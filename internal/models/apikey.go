package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApiKey grants bearer access to the API surface. The key value itself is
// immutable once issued; access is revoked by setting DisabledAt rather
// than deleting the row, preserving it for audit and job attribution.
type ApiKey struct {
	ID              string     `gorm:"primaryKey;type:uuid;default:uuid_generate_v4()" json:"id"`
	Key             string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	Owner           string     `gorm:"type:varchar(255);not null" json:"owner"`
	RateLimitPerMin int        `gorm:"not null;default:60" json:"rateLimitPerMin"`
	DisabledAt      *time.Time `json:"disabledAt,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"createdAt"`
}

func (ApiKey) TableName() string { return "api_keys" }

// BeforeCreate assigns an ID when the caller hasn't set one, so inserts
// don't depend on a Postgres-only column default.
func (k *ApiKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	return nil
}

// Disabled reports whether the key has been revoked.
func (k *ApiKey) Disabled() bool {
	return k.DisabledAt != nil
}
