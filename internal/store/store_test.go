package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/models"
)

// testAPIKeyID stands in for an ApiKey row id; the api_key_id columns are
// typed uuid, so it must be a well-formed UUID.
const testAPIKeyID = "11111111-1111-1111-1111-111111111111"

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// StoreTestSuite exercises the Job Store against a real Postgres database,
// the only backend that supports the SELECT ... FOR UPDATE SKIP LOCKED
// claim path. It skips itself when no database is reachable.
type StoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *Store
}

func (s *StoreTestSuite) SetupSuite() {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "musewave_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		s.T().Skipf("skipping store tests: database not available (%v)", err)
		return
	}
	require.NoError(s.T(), db.AutoMigrate(&models.Job{}, &models.RateCounter{}))

	s.db = db
	s.store = New(db)
}

func (s *StoreTestSuite) TearDownSuite() {
	if s.db != nil {
		sqlDB, _ := s.db.DB()
		sqlDB.Close()
	}
}

func (s *StoreTestSuite) SetupTest() {
	if s.db == nil {
		return
	}
	s.db.Exec("TRUNCATE TABLE jobs, rate_counters RESTART IDENTITY CASCADE")
}

func (s *StoreTestSuite) TestEnqueue_IdenticalParamsReuseSucceededJob() {
	t := s.T()
	ctx := context.Background()

	jobID, reused, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "a", "seed": float64(1)}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)
	assert.False(t, reused)

	require.NoError(t, s.store.Succeed(ctx, jobID, models.JSONMap{"ok": true}, time.Now()))

	secondID, reused, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "a", "seed": float64(1)}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, jobID, secondID)
}

func (s *StoreTestSuite) TestEnqueue_DifferentParamsCreateDistinctJobs() {
	t := s.T()
	ctx := context.Background()

	id1, _, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "a"}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)
	id2, _, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "b"}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func (s *StoreTestSuite) TestEnqueue_KeyOrderDoesNotAffectDedupe() {
	t := s.T()
	ctx := context.Background()

	id1, _, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"a": 1.0, "b": 2.0}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)
	require.NoError(t, s.store.Succeed(ctx, id1, models.JSONMap{}, time.Now()))

	id2, reused, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"b": 2.0, "a": 1.0}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, id1, id2)
}

func (s *StoreTestSuite) TestClaimNext_AtomicAcrossTwoWorkers() {
	t := s.T()
	ctx := context.Background()

	jobID, _, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "claim-test"}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)

	now := time.Now()
	claimedA, err := s.store.ClaimNext(ctx, []models.JobType{models.JobTypeAudio}, "worker-a", now)
	require.NoError(t, err)
	require.NotNil(t, claimedA)
	assert.Equal(t, jobID, claimedA.ID)
	assert.Equal(t, models.JobStatusRunning, claimedA.Status)
	assert.Equal(t, 1, claimedA.Attempts)

	claimedB, err := s.store.ClaimNext(ctx, []models.JobType{models.JobTypeAudio}, "worker-b", now)
	require.NoError(t, err)
	assert.Nil(t, claimedB, "a second worker must not claim an already-running job")
}

func (s *StoreTestSuite) TestClaimNext_RespectsAvailableAt() {
	t := s.T()
	ctx := context.Background()

	_, _, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "future"}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, s.db.Model(&models.Job{}).Where("1=1").Update("available_at", future).Error)

	claimed, err := s.store.ClaimNext(ctx, []models.JobType{models.JobTypeAudio}, "worker-a", time.Now())
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func (s *StoreTestSuite) TestRetry_ReturnsToQueuedWithBackoff() {
	t := s.T()
	ctx := context.Background()

	jobID, _, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "retry-test"}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)

	_, err = s.store.ClaimNext(ctx, []models.JobType{models.JobTypeAudio}, "worker-a", time.Now())
	require.NoError(t, err)

	availableAt := time.Now().Add(4 * time.Second)
	require.NoError(t, s.store.Retry(ctx, jobID, apperrors.ServiceUnavailable("transcoder"), availableAt))

	job, err := s.store.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, job.Status)
	assert.WithinDuration(t, availableAt, job.AvailableAt, time.Second)
	assert.NotEmpty(t, job.Error)
}

func (s *StoreTestSuite) TestCancel_TerminalJobUnaffected() {
	t := s.T()
	ctx := context.Background()

	jobID, _, err := s.store.Enqueue(ctx, models.JobTypeAudio, models.JSONMap{"prompt": "cancel-test"}, EnqueueOptions{ApiKeyID: testAPIKeyID})
	require.NoError(t, err)
	require.NoError(t, s.store.Succeed(ctx, jobID, models.JSONMap{}, time.Now()))

	require.NoError(t, s.store.Cancel(ctx, jobID))

	job, err := s.store.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSucceeded, job.Status, "cancel must not override a terminal status")
}

func (s *StoreTestSuite) TestGetJob_NotFound() {
	_, err := s.store.GetJob(context.Background(), "00000000-0000-0000-0000-000000000000")
	s.Require().Error(err)
}

func (s *StoreTestSuite) TestTryAdmit_AllowsUpToLimitThenRejects() {
	t := s.T()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.store.TryAdmit(ctx, testAPIKeyID, 3, now))
	}

	err := s.store.TryAdmit(ctx, testAPIKeyID, 3, now)
	require.Error(t, err)
	apiErr, ok := err.(*apperrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrRateLimited, apiErr.Code)
}

func (s *StoreTestSuite) TestTryAdmit_SeparateKeysTrackedIndependently() {
	t := s.T()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.store.TryAdmit(ctx, "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", 1, now))
	require.NoError(t, s.store.TryAdmit(ctx, "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb", 1, now))
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
