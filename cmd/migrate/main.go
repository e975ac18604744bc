package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/musewave/backend/internal/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: .env file not found, using system environment variables")
	}

	root := &cobra.Command{
		Use:   "migrate",
		Short: "manage the musewave database schema",
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "run all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func() error { return database.Migrate() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "rollback the last migration (not supported; AutoMigrate has no down path)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return fmt.Errorf("migrate: down is not supported; GORM AutoMigrate only migrates forward")
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "report database connectivity",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func() error { return database.Health() })
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withDB(fn func() error) error {
	if err := database.Initialize(); err != nil {
		return fmt.Errorf("migrate: connecting to database: %w", err)
	}
	defer database.Close()
	return fn()
}
