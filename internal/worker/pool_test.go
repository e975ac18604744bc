package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/models"
)

func TestBackoffDelay_DoublesPerAttemptWithinJitterBound(t *testing.T) {
	for attempts := 1; attempts <= 4; attempts++ {
		base := 2000 * (1 << uint(attempts-1))
		d := backoffDelay(2000, attempts)
		assert.GreaterOrEqual(t, d, time.Duration(base)*time.Millisecond)
		assert.LessOrEqual(t, d, time.Duration(float64(base)*1.20)*time.Millisecond)
	}
}

func TestBackoffDelay_ClampsNonPositiveAttemptsToOne(t *testing.T) {
	d := backoffDelay(2000, 0)
	assert.GreaterOrEqual(t, d, 2*time.Second)
	assert.LessOrEqual(t, d, time.Duration(2000*1.20)*time.Millisecond)
}

func TestPerJobTimeout_ScalesWithDuration(t *testing.T) {
	base := 15 * 60 * 1000
	d := perJobTimeout(base, models.JSONMap{"durationSec": float64(120)})
	assert.Equal(t, 30*time.Minute, d)
}

func TestPerJobTimeout_DefaultsWhenDurationAbsent(t *testing.T) {
	base := 15 * 60 * 1000
	d := perJobTimeout(base, models.JSONMap{})
	assert.Equal(t, 15*time.Minute, d)
}

func TestShouldRetry_ExhaustedAttemptsNeverRetries(t *testing.T) {
	job := &models.Job{Attempts: 3, MaxAttempts: 3}
	timedOut := &apperrors.APIError{Code: apperrors.ErrTimedOut}
	assert.False(t, shouldRetry(job, timedOut))
}

func TestShouldRetry_NonRetryableErrorClassFails(t *testing.T) {
	job := &models.Job{Attempts: 1, MaxAttempts: 3}
	invalid := &apperrors.APIError{Code: apperrors.ErrInvalidRequest}
	assert.False(t, shouldRetry(job, invalid))
}

func TestShouldRetry_RetryableErrorClassRetries(t *testing.T) {
	job := &models.Job{Attempts: 1, MaxAttempts: 3}
	timedOut := &apperrors.APIError{Code: apperrors.ErrTimedOut}
	assert.True(t, shouldRetry(job, timedOut))
}
