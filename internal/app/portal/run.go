package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	fetchclient "github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	"github.com/Apurer/pawmatch/internal/app/workspace"
	portalmemory "github.com/Apurer/pawmatch/internal/domains/portal/adapters/memory"
	portalpostgres "github.com/Apurer/pawmatch/internal/domains/portal/adapters/persistence/postgres"
	portalports "github.com/Apurer/pawmatch/internal/domains/portal/ports"
	"github.com/Apurer/pawmatch/internal/platform/config"
	"github.com/Apurer/pawmatch/internal/platform/migrations"
	platformobservability "github.com/Apurer/pawmatch/internal/platform/observability"
	platformpostgres "github.com/Apurer/pawmatch/internal/platform/postgres"
)

const serviceName = "pawmatch-portal"

// Run boots the portal HTTP API with observability and session storage wired.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	store, cleanupStore := buildSessionStore(ctx, cfg, logger)
	defer cleanupStore()

	breaker := fetchclient.NewBreaker(cfg.BreakerSettings(), logger)
	sessions := NewSessions(store, SessionsConfig{
		BaseURL:  cfg.API.BaseURL,
		TTL:      cfg.SessionTTL(),
		HashKey:  []byte(cfg.Portal.CookieHashKey),
		BlockKey: []byte(cfg.Portal.CookieBlockKey),
		Secure:   cfg.Portal.SecureCookie,
		Logger:   logger,
		Metrics:  instruments.Metrics,
		Workspace: []workspace.Option{
			workspace.WithLogger(logger),
			workspace.WithTracer(instruments.Tracer("internal.dogs.catalog")),
			workspace.WithMeter(instruments.Meter("internal.dogs.catalog")),
			workspace.WithClientOptions(
				fetchclient.WithTimeout(cfg.Timeout()),
				fetchclient.WithBreaker(breaker),
				fetchclient.WithObserver(instruments.Metrics),
			),
		},
	})
	defer sessions.Close()

	api := NewAPI(sessions, logger)
	router := NewRouter(api, instruments.Metrics, serviceName)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sweep(ctx, sessions, store, cfg.SessionTTL(), logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("PawMatch portal listening", slog.String("addr", server.Addr), slog.String("upstream", cfg.API.BaseURL))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("PawMatch portal exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildSessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (portalports.SessionStore, func()) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.Portal.PostgresDSN, logger)
	if db == nil {
		return portalmemory.NewSessionStore(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate portal schema, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return portalmemory.NewSessionStore(), func() {}
	}
	logger.Info("portal sessions configured with postgres")
	return portalpostgres.NewSessionStore(db), cleanup
}

// sweep evicts idle visitors and purges expired snapshots until ctx ends.
func sweep(ctx context.Context, sessions *Sessions, store portalports.SessionStore, ttl time.Duration, logger *slog.Logger) {
	interval := min(ttl/4, 15*time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			evicted := sessions.Sweep(now)
			purged, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("failed to purge portal sessions", slog.String("error", err.Error()))
				continue
			}
			if evicted > 0 || purged > 0 {
				logger.Info("portal sessions swept", slog.Int("evicted", evicted), slog.Int64("purged", purged))
			}
		}
	}
}
