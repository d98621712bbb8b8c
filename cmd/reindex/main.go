// Command reindex rebuilds the spatial index from the stored trophies.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trophyangler/internal/config"
	"trophyangler/internal/database"
	"trophyangler/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DB.URL, nil, database.Options{})
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := repository.NewTrophyRepository(db).RebuildIndex(ctx)
	if err != nil {
		log.Fatalf("reindex failed: %v", err)
	}
	log.Printf("reindex completed: indexed=%d", n)
}
