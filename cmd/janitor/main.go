package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/musewave/backend/internal/config"
	"github.com/musewave/backend/internal/database"
	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/store"
)

// cmd/janitor runs the periodic housekeeping sweeps spec.md §5 names: it
// removes stale per-job scratch directories left behind by the renderer and
// prunes expired rate-limit counter windows. It is meant to run on a
// schedule (cron, k8s CronJob) rather than as a long-lived process.
const (
	scratchMaxAge     = 24 * time.Hour
	rateCounterMaxAge = 24 * time.Hour
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

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("ENVIRONMENT", cfg.Environment)
	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("database: connection failed", err)
	}
	defer database.Close()

	ctx := context.Background()

	removed, err := sweepScratchDir(cfg.ScratchDir, scratchMaxAge)
	if err != nil {
		logger.Log.Error("janitor: scratch sweep failed", zap.Error(err))
	} else {
		logger.Log.Info("janitor: scratch sweep done", zap.Int("removed", removed))
	}

	jobStore := store.New(database.DB)
	pruned, err := jobStore.PruneRateCounters(ctx, time.Now().Add(-rateCounterMaxAge))
	if err != nil {
		logger.Log.Error("janitor: rate counter prune failed", zap.Error(err))
	} else {
		logger.Log.Info("janitor: rate counter prune done", zap.Int64("pruned", pruned))
	}
}

// sweepScratchDir removes per-job scratch subdirectories under root whose
// modification time is older than maxAge. It does not touch root itself.
func sweepScratchDir(root string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
