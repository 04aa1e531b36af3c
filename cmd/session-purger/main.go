package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	portalpostgres "github.com/Apurer/pawmatch/internal/domains/portal/adapters/persistence/postgres"
	"github.com/Apurer/pawmatch/internal/platform/config"
	platformpostgres "github.com/Apurer/pawmatch/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.Portal.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge portal sessions")
	}

	store := portalpostgres.NewSessionStore(db)
	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge portal sessions: %v", err)
	}
	logger.Info("portal session purge completed", slog.Int64("purged", purged))
}
