package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/postgres"
)

func main() {
	// Parse command line flags
	direction := flag.String("direction", "up", "Migration direction: up or down")
	steps := flag.Int("steps", 0, "Apply n migrations, negative values roll back; overrides -direction")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}

	migrator, err := postgres.NewMigrator(db, logger)
	if err != nil {
		logger.Fatalw("Failed to create migrator", "error", err)
	}
	defer migrator.Close()

	logger.Info("Running database migrations...")
	switch {
	case *steps != 0:
		err = migrator.Steps(*steps)
	case *direction == "down":
		err = migrator.Down()
	case *direction == "up":
		err = migrator.Up()
	default:
		logger.Fatalw("Unknown migration direction", "direction", *direction)
	}
	if err != nil {
		logger.Fatalw("Failed to run migrations", "error", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		logger.Fatalw("Failed to read migration version", "error", err)
	}
	logger.Infow("Migration completed successfully", "version", version, "dirty", dirty)

	fmt.Println("Migration process completed")
}
