package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/musewave/backend/internal/config"
	"github.com/musewave/backend/internal/database"
	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/metrics"
	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/renderer"
	"github.com/musewave/backend/internal/repository"
	"github.com/musewave/backend/internal/storage"
	"github.com/musewave/backend/internal/store"
	"github.com/musewave/backend/internal/transcoder"
	"github.com/musewave/backend/internal/worker"
)

// cmd/worker runs the pipeline worker pool without an HTTP listener, for
// deployments that want to scale job processing independently of the API.
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

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("ENVIRONMENT", cfg.Environment)
	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("database: connection failed", err)
	}
	defer database.Close()

	assetRepo := repository.NewAssetRepository(database.DB)

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

	logger.Log.Info("musewave worker pool started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("worker: shutting down")

	workerPool.Stop()
	logger.Log.Info("worker: exited")
}

func concurrencyFromConfig(cfg map[string]int) map[models.JobType]int {
	out := make(map[models.JobType]int, len(cfg))
	for k, v := range cfg {
		out[models.JobType(k)] = v
	}
	return out
}
