package kernel

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/musewave/backend/internal/auth"
	"github.com/musewave/backend/internal/cache"
	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/repository"
	"github.com/musewave/backend/internal/storage"
	"github.com/musewave/backend/internal/store"
	"github.com/musewave/backend/internal/transcoder"
)

// MockKernel is a kernel designed for testing. It allows easy overriding of
// dependencies with test doubles (mocks, stubs, fakes).
type MockKernel struct {
	*Kernel
	overrides map[string]interface{}
}

// NewMock creates a new mock kernel with no dependencies registered.
func NewMock() *MockKernel {
	return &MockKernel{
		Kernel:    New(),
		overrides: make(map[string]interface{}),
	}
}

// WithMockDB sets the database for testing.
func (m *MockKernel) WithMockDB(db *gorm.DB) *MockKernel {
	m.SetDB(db)
	return m
}

// WithMockLogger sets a test logger.
func (m *MockKernel) WithMockLogger(l *zap.Logger) *MockKernel {
	m.SetLogger(l)
	return m
}

// WithMockCache sets a mock cache.
func (m *MockKernel) WithMockCache(c *cache.RedisClient) *MockKernel {
	m.SetCache(c)
	return m
}

// WithMockStorage sets a mock asset store.
func (m *MockKernel) WithMockStorage(s storage.Store) *MockKernel {
	m.SetStorage(s)
	return m
}

// WithMockTranscoder sets a mock Transcoder Gateway.
func (m *MockKernel) WithMockTranscoder(g *transcoder.Gateway) *MockKernel {
	m.SetTranscoder(g)
	return m
}

// WithMockJobStore sets a mock job store.
func (m *MockKernel) WithMockJobStore(s *store.Store) *MockKernel {
	m.SetJobStore(s)
	return m
}

// WithMockApiKeyRepo sets a mock ApiKey repository.
func (m *MockKernel) WithMockApiKeyRepo(r repository.ApiKeyRepository) *MockKernel {
	m.SetApiKeyRepo(r)
	return m
}

// WithMockAssetRepo sets a mock Asset repository.
func (m *MockKernel) WithMockAssetRepo(r repository.AssetRepository) *MockKernel {
	m.SetAssetRepo(r)
	return m
}

// WithMockAuthService sets a mock auth service.
func (m *MockKernel) WithMockAuthService(service *auth.Service) *MockKernel {
	m.SetAuthService(service)
	return m
}

// Override sets a custom override for a specific dependency type, for test
// doubles that have no dedicated With* setter.
func (m *MockKernel) Override(key string, value interface{}) *MockKernel {
	m.overrides[key] = value
	return m
}

// GetOverride retrieves an override if set.
func (m *MockKernel) GetOverride(key string) (interface{}, bool) {
	val, ok := m.overrides[key]
	return val, ok
}

// MinimalMock creates a mock kernel with only a logger. Useful for isolated
// unit tests that don't touch the database or external services.
func MinimalMock() *MockKernel {
	mock := NewMock()
	mock.SetLogger(logger.Log)
	return mock
}

// Clean tears down a mock kernel after tests complete.
func (m *MockKernel) Clean(ctx context.Context) error {
	return m.Cleanup(ctx)
}
