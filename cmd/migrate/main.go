package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ccf-policy/config"
	"ccf-policy/core/store"
	"ccf-policy/core/utils"
)

func main() {
	statusOnly := flag.Bool("status", false, "print migration status and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger := utils.NewLoggerWithOptions(nil, cfg.LogLevel, cfg.LogFormat)
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	status, err := store.GetMigrationStatus(ctx, db)
	if err != nil {
		logger.Fatalf("migration status: %v", err)
	}
	if *statusOnly {
		fmt.Printf("current=%d latest=%d pending=%t\n", status.CurrentVersion, status.LatestVersion, status.HasPending)
		return
	}
	if status.HasGooseTable && !status.HasPending {
		logger.Printf("migrations up to date (version %d)", status.CurrentVersion)
		return
	}
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}
	logger.Printf("migrations applied")
}
