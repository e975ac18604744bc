package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/musewave/backend/internal/auth"
	"github.com/musewave/backend/internal/cache"
	"github.com/musewave/backend/internal/config"
	"github.com/musewave/backend/internal/database"
	"github.com/musewave/backend/internal/handlers"
	"github.com/musewave/backend/internal/kernel"
	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/metrics"
	"github.com/musewave/backend/internal/middleware"
	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/renderer"
	"github.com/musewave/backend/internal/repository"
	"github.com/musewave/backend/internal/seed"
	"github.com/musewave/backend/internal/storage"
	"github.com/musewave/backend/internal/store"
	"github.com/musewave/backend/internal/telemetry"
	"github.com/musewave/backend/internal/transcoder"
	"github.com/musewave/backend/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("warning: .env file not found, using system environment variables\n")
	}

	cfg, err := config.Load("")
	if err != nil {
		panic("config: " + err.Error())
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("logger: " + err.Error())
	}
	defer logger.Close()

	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "musewave-server",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OtelEndpoint,
		Enabled:      cfg.OtelEnabled,
		SamplingRate: cfg.OtelSamplingRate,
	})
	if err != nil {
		logger.Log.Warn("telemetry: tracer init failed, continuing without tracing", zap.Error(err))
	}
	if tracerProvider != nil {
		defer tracerProvider.Shutdown(context.Background())
	}

	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("redis: connection failed, rate limiting falls back to in-memory", zap.Error(err))
			redisClient = nil
		}
	}

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("ENVIRONMENT", cfg.Environment)
	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("database: connection failed", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("database: migration failed", err)
	}

	apiKeyRepo := repository.NewApiKeyRepository(database.DB)
	assetRepo := repository.NewAssetRepository(database.DB)

	if cfg.Environment == "development" {
		if count, err := apiKeyRepo.Count(context.Background()); err == nil && count == 0 {
			logger.Log.Info("seed: development database is empty, seeding demo data")
			if err := seed.NewSeeder(database.DB).SeedDev(); err != nil {
				logger.Log.Error("seed: dev seed failed", zap.Error(err))
			}
		}
	}

	var blobStore storage.Store
	switch cfg.StorageBackend {
	case "s3":
		blobStore, err = storage.NewS3Store(context.Background(), storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			BaseURL:         cfg.S3BaseURL,
		})
	default:
		blobStore, err = storage.NewLocalStore(cfg.AssetsDir, "/assets")
	}
	if err != nil {
		logger.FatalWithFields("storage: backend init failed", err)
	}

	metricsManager := metrics.Initialize()

	gateway := transcoder.NewGateway(cfg.TranscoderBin, cfg.TranscoderProbeBin)
	caps := gateway.Probe(context.Background())
	metricsManager.SetTranscoderAvailable(caps.TranscoderAvailable && caps.ProbeAvailable)
	if !caps.TranscoderAvailable || !caps.ProbeAvailable {
		logger.Log.Warn("transcoder: binaries not found on PATH at boot",
			zap.Bool("transcoderAvailable", caps.TranscoderAvailable),
			zap.Bool("probeAvailable", caps.ProbeAvailable))
	}

	jobStore := store.New(database.DB)
	authService := auth.NewService(apiKeyRepo)

	render := renderer.New(gateway, blobStore, cfg.ScratchDir, metricsManager)
	pipelineHandler := worker.NewPipelineHandler(jobStore, render, assetRepo)

	workerPool := worker.New(jobStore, map[models.JobType]worker.Handler{
		models.JobTypePipeline: pipelineHandler,
	}, worker.Config{
		Concurrency:             concurrencyFromConfig(cfg.WorkerConcurrency),
		PollInterval:            2 * time.Second,
		GenerationTimeoutBaseMs: cfg.GenerationTimeoutMs,
		GracefulShutdownSec:     cfg.GracefulShutdownSec,
	}, metricsManager)
	workerPool.Start()

	appKernel := kernel.New().
		WithDB(database.DB).
		WithLogger(logger.Log).
		WithCache(redisClient).
		WithMetrics(metricsManager).
		WithStorage(blobStore).
		WithTranscoder(gateway).
		WithJobStore(jobStore).
		WithWorkerPool(workerPool).
		WithApiKeyRepo(apiKeyRepo).
		WithAssetRepo(assetRepo).
		WithAuthService(authService)

	if err := appKernel.Validate(); err != nil {
		logger.FatalWithFields("kernel: validation failed", err)
	}

	appKernel.OnCleanup(func(ctx context.Context) error {
		workerPool.Stop()
		return nil
	})
	if redisClient != nil {
		appKernel.OnCleanup(func(ctx context.Context) error { return redisClient.Close() })
	}

	h := handlers.NewHandlers(appKernel)

	r := gin.New()

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" || strings.Contains(allowedOrigins, "*") {
		logger.Log.Warn("cors: CORS_ALLOWED_ORIGINS unset or wildcarded; allowing no cross-origin callers")
		corsConfig.AllowOrigins = []string{}
	} else {
		origins := strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		corsConfig.AllowOrigins = origins
	}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CorrelationMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	if cfg.OtelEnabled {
		r.Use(middleware.TracingMiddleware("musewave-server"))
	}
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics())

	api := r.Group("/v1")
	api.Use(middleware.RateLimitSmartDefault())
	api.Use(middleware.AuthMiddleware(authService))
	api.Use(middleware.StoreRateLimitMiddleware(jobStore))
	{
		api.POST("/generate", h.Generate)
		api.GET("/jobs/:id", h.GetJob)
		api.GET("/assets/:id", h.GetAsset)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("musewave backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("server: failed to start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("server: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.GracefulShutdownSec)*time.Second)
	defer cancel()

	if err := appKernel.Cleanup(shutdownCtx); err != nil {
		logger.Log.Error("kernel: cleanup error", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("server: forced shutdown", err)
	}

	logger.Log.Info("server: exited")
}

func concurrencyFromConfig(cfg map[string]int) map[models.JobType]int {
	out := make(map[models.JobType]int, len(cfg))
	for k, v := range cfg {
		out[models.JobType(k)] = v
	}
	return out
}
