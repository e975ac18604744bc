package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/musewave/backend/internal/database"
	"github.com/musewave/backend/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, using system environment variables")
	}

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		seedDev()
	case "test":
		seedTest()
	case "clean":
		cleanSeed()
	default:
		fmt.Println("usage: seed [dev|test|clean]")
		fmt.Println("  dev   - seed development database with demo api keys and jobs")
		fmt.Println("  test  - seed test database with a single api key")
		fmt.Println("  clean - remove all seed-created rows")
		os.Exit(1)
	}
}

func seedDev() {
	mustConnect()
	defer database.Close()

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.SeedDev(); err != nil {
		log.Fatalf("seed: dev seed failed: %v", err)
	}
	log.Println("seed: development database seeded")
}

func seedTest() {
	mustConnect()
	defer database.Close()

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.SeedTest(); err != nil {
		log.Fatalf("seed: test seed failed: %v", err)
	}
	log.Println("seed: test database seeded")
}

func cleanSeed() {
	mustConnect()
	defer database.Close()

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.Clean(context.Background()); err != nil {
		log.Fatalf("seed: clean failed: %v", err)
	}
	log.Println("seed: seed data cleaned")
}

func mustConnect() {
	if err := database.Initialize(); err != nil {
		log.Fatalf("seed: failed to connect to database: %v", err)
	}
}
