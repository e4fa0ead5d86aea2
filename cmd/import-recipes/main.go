package main

import (
	"context"
	"flag"
	"log"

	"github.com/plateful/cookbook/config"
	"github.com/plateful/cookbook/internal/database"
	"github.com/plateful/cookbook/internal/importer"
	"github.com/plateful/cookbook/internal/service"
)

func main() {
	var (
		file = flag.String("file", "recipes.json", "path to the JSON recipe file")
		mode = flag.String("mode", "", "import mode: insert or upsert (defaults to IMPORT_MODE)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *mode == "" {
		*mode = cfg.ImportMode
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	im := importer.New(service.NewRecipeService(db), importer.Mode(*mode))

	report, err := im.ImportFile(context.Background(), *file)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Imported %d recipes from %s (%d updated, %d skipped)",
		report.Inserted, *file, report.Updated, report.Skipped)
}
