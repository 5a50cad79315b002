package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/odomo-app/odomo/internal/auth"
	"github.com/odomo-app/odomo/internal/config"
	"github.com/odomo-app/odomo/internal/ratelimit"
	"github.com/odomo-app/odomo/internal/server"
	"github.com/odomo-app/odomo/internal/service/decay"
	"github.com/odomo-app/odomo/internal/service/items"
	"github.com/odomo-app/odomo/internal/service/pet"
	"github.com/odomo-app/odomo/internal/service/progression"
	"github.com/odomo-app/odomo/internal/storage"
	"github.com/odomo-app/odomo/internal/telemetry"
	"github.com/odomo-app/odomo/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("ODOMO_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("odomo starting", "version", version, "port", cfg.Port)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Connect to database and apply migrations.
	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Create JWT manager.
	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiration)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// Assemble the pet session facade from its domain pieces.
	decayModel, err := decay.New(decay.DefaultTuning())
	if err != nil {
		return fmt.Errorf("decay: %w", err)
	}
	petSvc := pet.New(db, decayModel, items.DefaultCatalogue(), progression.New(progression.DefaultGates()), logger)

	// Rate limiters: Redis when configured (shared across instances),
	// in-process token buckets otherwise.
	syncLimiter, authLimiter, err := newLimiters(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}
	defer func() {
		_ = syncLimiter.Close()
		_ = authLimiter.Close()
	}()

	srv := server.New(server.ServerConfig{
		DB:                  db,
		JWTMgr:              jwtMgr,
		PetSvc:              petSvc,
		Logger:              logger,
		SyncLimiter:         syncLimiter,
		AuthLimiter:         authLimiter,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Start HTTP server in background.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("odomo shutting down")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := srv.Shutdown(httpCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	slog.Info("odomo stopped")
	return nil
}

// newLimiters builds the per-owner sync limiter and the per-IP auth limiter.
// Config limits are requests per minute; the memory limiter takes a per-second
// refill rate with the full minute as burst.
func newLimiters(ctx context.Context, cfg config.Config, logger *slog.Logger) (ratelimit.Limiter, ratelimit.Limiter, error) {
	if cfg.RedisURL != "" {
		syncL, err := ratelimit.NewRedisLimiter(ctx, cfg.RedisURL, "sync", cfg.SyncRateLimit, time.Minute)
		if err != nil {
			return nil, nil, err
		}
		authL, err := ratelimit.NewRedisLimiter(ctx, cfg.RedisURL, "auth", cfg.AuthRateLimit, time.Minute)
		if err != nil {
			_ = syncL.Close()
			return nil, nil, err
		}
		logger.Info("rate limiting: redis (fixed window)",
			"sync_per_min", cfg.SyncRateLimit, "auth_per_min", cfg.AuthRateLimit)
		return syncL, authL, nil
	}

	logger.Info("rate limiting: memory (in-process token bucket)",
		"sync_per_min", cfg.SyncRateLimit, "auth_per_min", cfg.AuthRateLimit)
	syncL := ratelimit.NewMemoryLimiter(float64(cfg.SyncRateLimit)/60.0, cfg.SyncRateLimit)
	authL := ratelimit.NewMemoryLimiter(float64(cfg.AuthRateLimit)/60.0, cfg.AuthRateLimit)
	return syncL, authL, nil
}
