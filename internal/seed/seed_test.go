package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/musewave/backend/internal/models"
)

func newSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ApiKey{}, &models.Job{}, &models.Asset{}))
	return db
}

func TestSeedDev(t *testing.T) {
	db := newSeedTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.SeedDev())

	var keyCount, jobCount int64
	require.NoError(t, db.Model(&models.ApiKey{}).Count(&keyCount).Error)
	require.NoError(t, db.Model(&models.Job{}).Count(&jobCount).Error)

	assert.Equal(t, int64(5), keyCount)
	assert.Equal(t, int64(20), jobCount)
}

func TestSeedTest(t *testing.T) {
	db := newSeedTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.SeedTest())

	var keyCount, jobCount int64
	require.NoError(t, db.Model(&models.ApiKey{}).Count(&keyCount).Error)
	require.NoError(t, db.Model(&models.Job{}).Count(&jobCount).Error)

	assert.Equal(t, int64(1), keyCount)
	assert.Equal(t, int64(0), jobCount)
}

func TestClean(t *testing.T) {
	db := newSeedTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.SeedDev())
	require.NoError(t, s.Clean(context.Background()))

	var keyCount, jobCount int64
	require.NoError(t, db.Model(&models.ApiKey{}).Count(&keyCount).Error)
	require.NoError(t, db.Model(&models.Job{}).Count(&jobCount).Error)

	assert.Equal(t, int64(0), keyCount)
	assert.Equal(t, int64(0), jobCount)
}
