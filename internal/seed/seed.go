// Package seed provides the auto-seed-on-boot idiom from the teacher's
// internal/seed/seeder.go, generalized from social-graph fixtures
// (users, posts, follows) to this domain's ApiKey and Job rows.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"

	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/models"
	"go.uber.org/zap"
)

// Seeder seeds ApiKey and demo Job rows for local development.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

var sampleGenres = []string{"lo-fi", "synthwave", "drum-and-bass", "ambient", "trap", "house", "boom-bap", "jazz-hop"}
var samplePrompts = []string{
	"a rainy-night drive through a neon city",
	"waking up on a quiet mountain morning",
	"a warehouse rave right before the drop",
	"walking through an old arcade at closing time",
	"a slow-burn breakup song with a hopeful bridge",
}

// SeedDev seeds the development database with a handful of ApiKeys and a
// spread of demo Jobs across every terminal and non-terminal status, so a
// freshly booted server has something to poll against.
func (s *Seeder) SeedDev() error {
	logger.Log.Info("seed: creating api keys")
	keys, err := s.seedApiKeys(5)
	if err != nil {
		return fmt.Errorf("seed: api keys: %w", err)
	}

	logger.Log.Info("seed: creating demo jobs")
	if err := s.seedJobs(keys, 20); err != nil {
		return fmt.Errorf("seed: jobs: %w", err)
	}

	logger.Log.Info("seed: done", zap.Int("apiKeys", len(keys)), zap.Int("jobs", 20))
	return nil
}

// SeedTest seeds a minimal fixture set for integration tests: one ApiKey,
// no jobs.
func (s *Seeder) SeedTest() error {
	_, err := s.seedApiKeys(1)
	return err
}

// Clean removes all seed-created rows. Intended for local development only.
func (s *Seeder) Clean(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM assets").Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Exec("DELETE FROM jobs").Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Exec("DELETE FROM api_keys").Error
}

func (s *Seeder) seedApiKeys(n int) ([]*models.ApiKey, error) {
	keys := make([]*models.ApiKey, 0, n)
	for i := 0; i < n; i++ {
		key := &models.ApiKey{
			Key:             gofakeit.UUID(),
			Owner:           gofakeit.Company(),
			RateLimitPerMin: 60,
			CreatedAt:       time.Now(),
		}
		if err := s.db.Create(key).Error; err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Seeder) seedJobs(keys []*models.ApiKey, n int) error {
	statuses := []models.JobStatus{
		models.JobStatusQueued, models.JobStatusRunning,
		models.JobStatusSucceeded, models.JobStatusFailed,
	}

	for i := 0; i < n; i++ {
		key := keys[rand.Intn(len(keys))]
		status := statuses[rand.Intn(len(statuses))]

		req := models.GenerateRequest{
			MusicPrompt: gofakeit.RandomString(samplePrompts),
			Genres:      []string{gofakeit.RandomString(sampleGenres)},
			DurationSec: 30 + rand.Intn(91),
		}

		params := models.JSONMap{
			"musicPrompt": req.MusicPrompt,
			"genres":      req.Genres,
			"durationSec": req.DurationSec,
		}

		now := time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour)
		job := &models.Job{
			Type:        models.JobTypePipeline,
			Status:      status,
			Params:      params,
			Attempts:    0,
			MaxAttempts: models.DefaultMaxAttempts,
			BackoffMs:   models.DefaultBackoffMs,
			AvailableAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
			DedupeKey:   gofakeit.UUID(),
			ApiKeyID:    key.ID,
		}

		switch status {
		case models.JobStatusSucceeded:
			job.Progress = 100
			job.Result = models.JSONMap{"assets": models.JSONMap{}}
			completed := now.Add(2 * time.Minute)
			job.CompletedAt = &completed
		case models.JobStatusFailed:
			job.Error = "transcoder: ffmpeg exited with status 1"
			completed := now.Add(90 * time.Second)
			job.CompletedAt = &completed
		case models.JobStatusRunning:
			job.Progress = 25 + rand.Intn(50)
			started := now.Add(10 * time.Second)
			job.StartedAt = &started
		}

		if err := s.db.Create(job).Error; err != nil {
			return err
		}
	}
	return nil
}
