package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/models"
)

// TryAdmit implements spec.md §4.6's rate counter: an atomic upsert+increment
// keyed by (api_key_id, window_start), one UTC minute wide. If the
// post-increment token count exceeds limit, the increment is rolled back and
// RateLimited is returned.
func (s *Store) TryAdmit(ctx context.Context, apiKeyID string, limit int, now time.Time) error {
	windowStart := now.Truncate(time.Minute).UnixMilli()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter := models.RateCounter{
			ApiKeyID:      apiKeyID,
			WindowStartMs: windowStart,
			Tokens:        1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "api_key_id"}, {Name: "window_start_ms"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"tokens": gorm.Expr("rate_counters.tokens + 1")}),
		}).Create(&counter).Error; err != nil {
			return apperrors.InternalError("store: admitting request: " + err.Error())
		}

		var updated models.RateCounter
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("api_key_id = ? AND window_start_ms = ?", apiKeyID, windowStart).
			First(&updated).Error; err != nil {
			return apperrors.InternalError("store: reading rate counter: " + err.Error())
		}

		if updated.Tokens > limit {
			if err := tx.Model(&models.RateCounter{}).
				Where("api_key_id = ? AND window_start_ms = ?", apiKeyID, windowStart).
				UpdateColumn("tokens", gorm.Expr("tokens - 1")).Error; err != nil {
				return apperrors.InternalError("store: rolling back rate counter: " + err.Error())
			}
			return apperrors.RateLimited("")
		}
		return nil
	})
}

// PruneRateCounters deletes windows older than olderThan, the janitor task
// named in spec.md §5.
func (s *Store) PruneRateCounters(ctx context.Context, olderThan time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("window_start_ms < ?", olderThan.UnixMilli()).Delete(&models.RateCounter{})
	if result.Error != nil {
		return 0, apperrors.InternalError("store: pruning rate counters: " + result.Error.Error())
	}
	return result.RowsAffected, nil
}
