// Package kernel provides dependency injection for the backend's server,
// worker, and janitor processes. It consolidates every constructed
// dependency and provides type-safe, concurrency-safe access, following the
// teacher's internal/kernel/container.go Service Locator pattern (fluent
// Set*/With* setters behind a RWMutex, LIFO cleanup hooks, Validate()).
package kernel

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/musewave/backend/internal/auth"
	"github.com/musewave/backend/internal/cache"
	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/metrics"
	"github.com/musewave/backend/internal/repository"
	"github.com/musewave/backend/internal/storage"
	"github.com/musewave/backend/internal/store"
	"github.com/musewave/backend/internal/transcoder"
	"github.com/musewave/backend/internal/worker"
)

// Kernel holds all application dependencies and provides type-safe access.
type Kernel struct {
	// Core infrastructure
	db      *gorm.DB
	logger  *zap.Logger
	cache   *cache.RedisClient
	metrics *metrics.Manager

	// Domain services
	storage    storage.Store
	transcoder *transcoder.Gateway
	jobStore   *store.Store
	workerPool *worker.Pool

	// Auth
	apiKeyRepo repository.ApiKeyRepository
	auth       *auth.Service

	// Assets
	assetRepo repository.AssetRepository

	// Lifecycle hooks
	cleanupFuncs []func(context.Context) error
	mu           sync.RWMutex
}

// New creates a new empty kernel. Services should be registered using Set*
// methods.
func New() *Kernel {
	return &Kernel{
		cleanupFuncs: make([]func(context.Context) error, 0),
	}
}

// SetDB registers the database connection.
func (c *Kernel) SetDB(db *gorm.DB) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	return c
}

// DB returns the database connection.
func (c *Kernel) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// SetLogger registers the logger.
func (c *Kernel) SetLogger(l *zap.Logger) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
	return c
}

// Logger returns the logger instance, falling back to the package-global
// logger if none was registered.
func (c *Kernel) Logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.logger == nil {
		return logger.Log
	}
	return c.logger
}

// SetCache registers the Redis cache client used by the IP rate limiter.
func (c *Kernel) SetCache(client *cache.RedisClient) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = client
	return c
}

// Cache returns the Redis cache client.
func (c *Kernel) Cache() *cache.RedisClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// SetMetrics registers the Prometheus metrics manager.
func (c *Kernel) SetMetrics(m *metrics.Manager) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
	return c
}

// Metrics returns the Prometheus metrics manager.
func (c *Kernel) Metrics() *metrics.Manager {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics
}

// SetStorage registers the asset blob store.
func (c *Kernel) SetStorage(s storage.Store) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage = s
	return c
}

// Storage returns the asset blob store.
func (c *Kernel) Storage() storage.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

// SetTranscoder registers the Transcoder Gateway.
func (c *Kernel) SetTranscoder(g *transcoder.Gateway) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcoder = g
	return c
}

// Transcoder returns the Transcoder Gateway.
func (c *Kernel) Transcoder() *transcoder.Gateway {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transcoder
}

// SetJobStore registers the Job Store.
func (c *Kernel) SetJobStore(s *store.Store) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobStore = s
	return c
}

// JobStore returns the Job Store.
func (c *Kernel) JobStore() *store.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jobStore
}

// SetWorkerPool registers the Worker Pool. Both the server process (which
// also starts the pool and lets handlers call Wake after enqueuing) and the
// worker process register the pool they run.
func (c *Kernel) SetWorkerPool(p *worker.Pool) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workerPool = p
	return c
}

// WorkerPool returns the Worker Pool, or nil if this process doesn't run one.
func (c *Kernel) WorkerPool() *worker.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.workerPool
}

// SetApiKeyRepo registers the ApiKey repository.
func (c *Kernel) SetApiKeyRepo(r repository.ApiKeyRepository) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKeyRepo = r
	return c
}

// ApiKeyRepo returns the ApiKey repository.
func (c *Kernel) ApiKeyRepo() repository.ApiKeyRepository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKeyRepo
}

// SetAssetRepo registers the Asset repository.
func (c *Kernel) SetAssetRepo(r repository.AssetRepository) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assetRepo = r
	return c
}

// AssetRepo returns the Asset repository.
func (c *Kernel) AssetRepo() repository.AssetRepository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assetRepo
}

// SetAuthService registers the authentication service.
func (c *Kernel) SetAuthService(service *auth.Service) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = service
	return c
}

// Auth returns the authentication service.
func (c *Kernel) Auth() *auth.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first
// cleaned up), ensuring proper dependency ordering during shutdown.
func (c *Kernel) OnCleanup(fn func(context.Context) error) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup performs graceful shutdown of all registered services, calling
// cleanup functions in reverse order of registration.
func (c *Kernel) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// c.Logger() would take c.mu again; read the field directly.
	log := c.logger
	if log == nil {
		log = logger.Log
	}
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](ctx); err != nil {
			log.Error("cleanup function failed", zap.Int("index", i), zap.Error(err))
		}
	}

	return nil
}

// Validate checks that the dependencies every process needs are registered.
// Call after initialization and before serving traffic.
func (c *Kernel) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missing []string

	if c.db == nil {
		missing = append(missing, "database (DB)")
	}
	if c.storage == nil {
		missing = append(missing, "storage backend")
	}
	if c.transcoder == nil {
		missing = append(missing, "transcoder gateway")
	}
	if c.jobStore == nil {
		missing = append(missing, "job store")
	}
	if c.auth == nil {
		missing = append(missing, "auth service")
	}

	if len(missing) > 0 {
		return NewInitializationError("missing required dependencies", missing)
	}

	return nil
}

// WithDB is a fluent setter for the database connection.
func (c *Kernel) WithDB(db *gorm.DB) *Kernel { return c.SetDB(db) }

// WithLogger is a fluent setter for the logger.
func (c *Kernel) WithLogger(l *zap.Logger) *Kernel { return c.SetLogger(l) }

// WithCache is a fluent setter for the Redis cache client.
func (c *Kernel) WithCache(client *cache.RedisClient) *Kernel { return c.SetCache(client) }

// WithMetrics is a fluent setter for the metrics manager.
func (c *Kernel) WithMetrics(m *metrics.Manager) *Kernel { return c.SetMetrics(m) }

// WithStorage is a fluent setter for the asset blob store.
func (c *Kernel) WithStorage(s storage.Store) *Kernel { return c.SetStorage(s) }

// WithTranscoder is a fluent setter for the Transcoder Gateway.
func (c *Kernel) WithTranscoder(g *transcoder.Gateway) *Kernel { return c.SetTranscoder(g) }

// WithJobStore is a fluent setter for the Job Store.
func (c *Kernel) WithJobStore(s *store.Store) *Kernel { return c.SetJobStore(s) }

// WithWorkerPool is a fluent setter for the Worker Pool.
func (c *Kernel) WithWorkerPool(p *worker.Pool) *Kernel { return c.SetWorkerPool(p) }

// WithApiKeyRepo is a fluent setter for the ApiKey repository.
func (c *Kernel) WithApiKeyRepo(r repository.ApiKeyRepository) *Kernel { return c.SetApiKeyRepo(r) }

// WithAuthService is a fluent setter for the auth service.
func (c *Kernel) WithAuthService(service *auth.Service) *Kernel { return c.SetAuthService(service) }

// WithAssetRepo is a fluent setter for the Asset repository.
func (c *Kernel) WithAssetRepo(r repository.AssetRepository) *Kernel { return c.SetAssetRepo(r) }
