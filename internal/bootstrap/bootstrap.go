// Package bootstrap wires configuration, storage, locking and services into a
// ready ApplicationService, shared by cmd/server and slotctl.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	webAdapter "warehouse-slotting/internal/adapters/web"
	"warehouse-slotting/internal/app"
	"warehouse-slotting/internal/config"
	"warehouse-slotting/internal/core"
	"warehouse-slotting/internal/db"
	"warehouse-slotting/internal/lock"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Runtime owns the process-wide resources.
type Runtime struct {
	Pool    *pgxpool.Pool
	Service app.ApplicationService
	redis   *redis.Client
}

// Open connects to Postgres (and Redis when configured) and builds the
// application service.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Runtime, error) {
	policy, err := cfg.PlannerPolicy()
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	rt := &Runtime{Pool: pool}

	var locker core.Locker
	if cfg.RedisURL != "" {
		client, err := lock.Connect(ctx, cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		rt.redis = client
		locker = lock.NewRedisLocker(client)
		logger.Debug("warehouse lock shared through redis")
	} else {
		locker = core.NewLocalLocker()
	}

	slotting := core.NewSlottingService(db.NewPgStore(pool), locker, policy, logger)
	rt.Service = app.NewAppService(slotting)
	logger.Debug("planner policy", "exclusive_cells", policy.ExclusiveCells,
		"exclusive_when_unconstrained", policy.ExclusiveWhenUnconstrained)
	return rt, nil
}

// Close releases every resource Open acquired.
func (rt *Runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	rt.Pool.Close()
}

// Serve runs the HTTP API until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, rt *Runtime, cfg config.Config, logger *log.Logger) error {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set: warehouse routes are unauthenticated")
	}
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           webAdapter.NewHandler(rt.Service, cfg.AllowedOrigins, cfg.JWTSecret, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
