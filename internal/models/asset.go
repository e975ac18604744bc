package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetKind enumerates the media kinds produced by the Renderer.
type AssetKind string

const (
	AssetKindWAV  AssetKind = "wav"
	AssetKindMP3  AssetKind = "mp3"
	AssetKindMP4  AssetKind = "mp4"
	AssetKindJSON AssetKind = "json"
	AssetKindSRT  AssetKind = "srt"
)

// Asset is a produced, immutable media artifact. It is created only when
// its producing Job reaches JobStatusSucceeded and is never mutated after.
type Asset struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:uuid_generate_v4()" json:"id"`
	JobID       string    `gorm:"type:uuid;not null;index" json:"jobId"`
	Kind        AssetKind `gorm:"type:varchar(16);not null" json:"kind"`
	Mime        string    `gorm:"type:varchar(64);not null" json:"mime"`
	Path        string    `gorm:"type:text;not null" json:"-"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	DurationSec float64   `json:"durationSec,omitempty"`
	SizeBytes   int64     `gorm:"not null" json:"sizeBytes"`
	Meta        JSONMap   `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}

func (Asset) TableName() string { return "assets" }

// BeforeCreate assigns an ID when the caller hasn't set one, so inserts
// don't depend on a Postgres-only column default.
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
