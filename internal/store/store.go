// Package store implements the Job Store: persistent, DB-backed job
// lifecycle management with atomic claiming and idempotent enqueue, per
// spec.md §4.6. Grounded on the teacher's internal/queue/audio_jobs.go job
// lifecycle shape (pending/processing/complete/failed), generalized from an
// in-memory map to a gorm.io/gorm table with SELECT ... FOR UPDATE SKIP
// LOCKED claiming.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/musewave/backend/internal/canon"
	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/models"
)

// EnqueueOptions configures an Enqueue call, per spec.md §4.6.
type EnqueueOptions struct {
	ParentID          *string
	ApiKeyID          string
	MaxAttempts       int
	BackoffMs         int64
	IdempotencyWindow time.Duration
}

// Store is the Job Store. One Store wraps one *gorm.DB connection pool;
// callers share a single Store across the API surface and all workers.
type Store struct {
	db *gorm.DB
}

// New wraps db as a Store. Callers are responsible for running migrations
// (internal/database.Migrate) before use.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Enqueue computes the job's dedupe key and either returns a prior
// succeeded job's id (reused=true) or inserts a new queued row, per
// spec.md §4.6's Idempotency paragraph.
func (s *Store) Enqueue(ctx context.Context, jobType models.JobType, params models.JSONMap, opts EnqueueOptions) (jobID string, reused bool, err error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = models.DefaultMaxAttempts
	}
	if opts.BackoffMs <= 0 {
		opts.BackoffMs = models.DefaultBackoffMs
	}
	if opts.IdempotencyWindow <= 0 {
		opts.IdempotencyWindow = 24 * time.Hour
	}

	dedupeKey, err := computeDedupeKey(jobType, params, opts.ParentID)
	if err != nil {
		return "", false, apperrors.InternalError("store: computing dedupe key: " + err.Error())
	}

	now := time.Now()
	if prior, found, err := s.findSucceededByDedupe(ctx, dedupeKey, now.Add(-opts.IdempotencyWindow)); err != nil {
		return "", false, err
	} else if found {
		return prior.ID, true, nil
	}

	job := &models.Job{
		Type:        jobType,
		Status:      models.JobStatusQueued,
		Params:      params,
		Attempts:    0,
		MaxAttempts: opts.MaxAttempts,
		BackoffMs:   opts.BackoffMs,
		AvailableAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
		DedupeKey:   dedupeKey,
		ParentID:    opts.ParentID,
		ApiKeyID:    opts.ApiKeyID,
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		if isUniqueViolation(err) {
			// Concurrent enqueue raced us; the winner's row now exists.
			if prior, found, findErr := s.findSucceededByDedupe(ctx, dedupeKey, now.Add(-opts.IdempotencyWindow)); findErr == nil && found {
				return prior.ID, true, nil
			}
			var existing models.Job
			if findErr := s.db.WithContext(ctx).Where("dedupe_key = ?", dedupeKey).Order("created_at DESC").First(&existing).Error; findErr == nil {
				return existing.ID, true, nil
			}
		}
		return "", false, apperrors.InternalError("store: inserting job: " + err.Error())
	}

	return job.ID, false, nil
}

func isUniqueViolation(err error) bool {
	// Works across Postgres (pgx "23505") and SQLite ("UNIQUE constraint
	// failed") driver error text without importing either driver directly.
	msg := err.Error()
	return containsAny(msg, "23505", "UNIQUE constraint failed", "duplicate key value")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(s) >= len(sub) && indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// computeDedupeKey implements spec.md §4.6's dedupe_key formula:
// SHA-256(type || canonical(params) || parent_id).
func computeDedupeKey(jobType models.JobType, params models.JSONMap, parentID *string) (string, error) {
	encodedParams, err := canon.Marshal(map[string]interface{}(params))
	if err != nil {
		return "", err
	}
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	h := sha256.New()
	h.Write([]byte(jobType))
	h.Write(encodedParams)
	h.Write([]byte(parent))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ClaimNext atomically claims one queued, eligible job of any of the given
// types, ordered by created_at, using SELECT ... FOR UPDATE SKIP LOCKED so
// concurrent workers never claim the same row (spec.md §4.6, §5).
func (s *Store) ClaimNext(ctx context.Context, types []models.JobType, workerID string, now time.Time) (*models.Job, error) {
	var job models.Job
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND type IN ? AND available_at <= ?", models.JobStatusQueued, types, now).
			Order("created_at ASC").
			Limit(1).
			Find(&job)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			job = models.Job{}
			return gorm.ErrRecordNotFound
		}

		job.Status = models.JobStatusRunning
		job.Attempts++
		job.StartedAt = &now
		job.UpdatedAt = now
		return tx.Model(&models.Job{}).Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"status":     job.Status,
				"attempts":   job.Attempts,
				"started_at": job.StartedAt,
				"updated_at": job.UpdatedAt,
			}).Error
	})

	if errors.Is(txErr, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if txErr != nil {
		return nil, apperrors.InternalError("store: claiming job: " + txErr.Error())
	}
	return &job, nil
}

// Succeed marks id succeeded, attaches its result and asset ids.
func (s *Store) Succeed(ctx context.Context, id string, result models.JSONMap, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          models.JobStatusSucceeded,
			"result":          result,
			"completed_at":    now,
			"updated_at":      now,
			"progress":        100,
			"last_success_at": now,
		}).Error
}

// Fail marks id failed with a non-sensitive error message.
func (s *Store) Fail(ctx context.Context, id string, jobErr error, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.JobStatusFailed,
			"error":        userVisibleMessage(jobErr),
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// Retry returns id to queued with a new available_at, per §4.7's backoff
// formula (computed by the caller, the Worker Pool).
func (s *Store) Retry(ctx context.Context, id string, jobErr error, availableAt time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.JobStatusQueued,
			"error":        userVisibleMessage(jobErr),
			"available_at": availableAt,
			"updated_at":   time.Now(),
			"started_at":   nil,
		}).Error
}

// Cancel transitions id to cancelled regardless of its current state,
// except terminal states which are left untouched.
func (s *Store) Cancel(ctx context.Context, id string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status NOT IN ?", id, []models.JobStatus{models.JobStatusSucceeded, models.JobStatusFailed, models.JobStatusCancelled}).
		Updates(map[string]interface{}{
			"status":       models.JobStatusCancelled,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// UpdateProgress is an idempotent partial update: it never resets
// timestamps or status, satisfying §8's progress-monotonicity law at the
// call site (the Worker Pool never calls this with a decreasing percent).
func (s *Store) UpdateProgress(ctx context.Context, id string, percent int, message string) error {
	return s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":       percent,
			"status_message": message,
		}).Error
}

// GetJob returns the job row, or NotFound.
func (s *Store) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("job")
		}
		return nil, apperrors.InternalError("store: loading job: " + err.Error())
	}
	return &job, nil
}

func (s *Store) findSucceededByDedupe(ctx context.Context, dedupeKey string, since time.Time) (*models.Job, bool, error) {
	var job models.Job
	err := s.db.WithContext(ctx).
		Where("dedupe_key = ? AND status = ? AND completed_at >= ?", dedupeKey, models.JobStatusSucceeded, since).
		Order("completed_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.InternalError("store: dedupe lookup: " + err.Error())
	}
	return &job, true, nil
}

func userVisibleMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "an unexpected error occurred"
}
