// Package database owns the GORM connection, migrations, and query-timing
// hooks, following the teacher's internal/database/database.go Initialize/
// Migrate/Close/Health shape.
package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/musewave/backend/internal/metrics"
	"github.com/musewave/backend/internal/models"
)

// DB holds the database connection.
var DB *gorm.DB

// Initialize creates and configures the database connection.
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "musewave")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db

	registerMetricsHooks(db)

	log.Println("database connected")

	return nil
}

// Migrate runs auto-migration for all models plus the hand-written indexes
// spec.md §6 names beyond what GORM struct tags express.
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Printf("warning: could not create uuid-ossp extension: %v", err)
	}

	err := DB.AutoMigrate(
		&models.ApiKey{},
		&models.Job{},
		&models.Asset{},
		&models.RateCounter{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("database migrations completed")
	return nil
}

// createIndexes adds the claim/dedupe partial and composite indexes GORM
// struct tags alone can't express (partial indexes with WHERE clauses), plus
// the assets job_id index and the unique api_keys key index.
func createIndexes() error {
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_jobs_queued_claimable ON jobs (type, available_at, created_at) WHERE status = 'queued'")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_jobs_parent ON jobs (parent_id) WHERE parent_id IS NOT NULL")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_assets_job ON assets (job_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_api_keys_key ON api_keys (key)")

	return nil
}

// Close closes the database connection.
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity.
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// registerMetricsHooks registers GORM callbacks that time every query into
// the ambient DatabaseQueryDuration/DatabaseQueriesTotal metrics, kept from
// the teacher's registerMetricsHooks pattern even though spec.md §4.9 names
// neither — connection-pool/query observability an operator of this system
// would still want.
func registerMetricsHooks(db *gorm.DB) {
	m := metrics.Get()

	before := func(db *gorm.DB) {
		db.InstanceSet("metrics:start_time", time.Now())
	}
	after := func(queryType string) func(db *gorm.DB) {
		return func(db *gorm.DB) {
			start, ok := db.InstanceGet("metrics:start_time")
			if !ok {
				return
			}
			duration := time.Since(start.(time.Time)).Seconds()
			table := db.Statement.Table
			status := "success"
			if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
				status = "error"
			}
			m.DatabaseQueryDuration.WithLabelValues(queryType, table).Observe(duration)
			m.DatabaseQueriesTotal.WithLabelValues(queryType, table, status).Inc()
		}
	}

	db.Callback().Create().Before("gorm:before_create").Register("metrics:before_create", before)
	db.Callback().Create().After("gorm:after_create").Register("metrics:after_create", after("create"))
	db.Callback().Query().Before("gorm:before_query").Register("metrics:before_query", before)
	db.Callback().Query().After("gorm:after_query").Register("metrics:after_query", after("query"))
	db.Callback().Update().Before("gorm:before_update").Register("metrics:before_update", before)
	db.Callback().Update().After("gorm:after_update").Register("metrics:after_update", after("update"))
	db.Callback().Delete().Before("gorm:before_delete").Register("metrics:before_delete", before)
	db.Callback().Delete().After("gorm:after_delete").Register("metrics:after_delete", after("delete"))
}
