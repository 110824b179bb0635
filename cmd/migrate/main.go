package main

import (
	"flag"
	"log"

	"self-analysis/internal/config"
	"self-analysis/internal/database"
	"self-analysis/internal/logger"
)

func main() {
	var (
		dir  = flag.String("dir", "database/migrations", "directory containing migration scripts")
		down = flag.Bool("down", false, "roll back instead of migrating up")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewMigrateOracleDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *down {
		if err := database.RollbackMigrations(db, *dir); err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
		return
	}

	if err := database.RunMigrations(db, *dir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
}
