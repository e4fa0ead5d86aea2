package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plateful/cookbook/config"
	"github.com/plateful/cookbook/internal/backfill"
	"github.com/plateful/cookbook/internal/database"
	"github.com/plateful/cookbook/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	provider, err := service.NewVoyageClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	runner := backfill.NewRunner(service.NewRecipeService(db), provider, backfill.Config{
		BatchSize: cfg.BackfillBatchSize,
		Delay:     time.Duration(cfg.BackfillDelayMs) * time.Millisecond,
	})

	// Ctrl-C stops the run cleanly between records.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("Backfill failed after %d records: %v", report.Embedded, err)
	}

	log.Printf("Backfill complete: %d embedded, %d failed", report.Embedded, report.Failed)
}
