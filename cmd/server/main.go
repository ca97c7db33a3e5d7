// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/festy23/squadup/internal/clock"
	appConfig "github.com/festy23/squadup/internal/config"
	"github.com/festy23/squadup/internal/database"
	dbConfig "github.com/festy23/squadup/internal/database/config"
	"github.com/festy23/squadup/internal/database/migrate"
	"github.com/festy23/squadup/internal/database/pool"
	"github.com/festy23/squadup/internal/effects"
	"github.com/festy23/squadup/internal/engine"
	"github.com/festy23/squadup/internal/health"
	inviteRouter "github.com/festy23/squadup/internal/invite/router"
	inviteStore "github.com/festy23/squadup/internal/invite/store"
	"github.com/festy23/squadup/internal/middleware"
	"github.com/festy23/squadup/internal/scheduler"
	"github.com/festy23/squadup/internal/snapshot"
	statisticsRouter "github.com/festy23/squadup/internal/statistics/router"
	teamRouter "github.com/festy23/squadup/internal/team/router"
	teamStore "github.com/festy23/squadup/internal/team/store"
	"github.com/festy23/squadup/pkg/logger"
	"github.com/festy23/squadup/pkg/retry"
)

func main() {
	cfg := appConfig.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx)
	if err != nil {
		appLogger.Fatalw("failed to open snapshot database", "error", err)
	}
	if err := pool.SetupConnectionPool(db, pool.DefaultPoolConfig()); err != nil {
		appLogger.Fatalw("failed to configure connection pool", "error", err)
	}

	snapStore := snapshot.New(db, appLogger)

	clk := clock.New()
	teams := teamStore.New(cfg.Roster.Capacity)
	invites := inviteStore.New()

	platform := effects.NewLoggingAdapter(appLogger)
	dispatcher := effects.NewDispatcher(platform, platform, platform, appLogger)
	dispatcher.Start()
	defer dispatcher.Close()

	eng := engine.New(teams, invites, snapStore, dispatcher, clk, appLogger, engine.Config{
		Capacity:        cfg.Roster.Capacity,
		InviteTTL:       cfg.Roster.InviteTTL,
		DeclineCooldown: cfg.Roster.DeclineCooldown,
	})
	sched := scheduler.New(eng, clk, cfg.Roster.SweepInterval, appLogger)
	eng.SetExpiryTimers(sched.Arm, sched.Disarm)
	if err := eng.Restore(ctx); err != nil {
		appLogger.Fatalw("failed to restore snapshot", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Recovery(appLogger))
	r.Use(middleware.Logger(appLogger))

	teamRouter.RegisterRoutes(r, eng, appLogger)
	inviteRouter.RegisterRoutes(r, eng, appLogger)
	statisticsRouter.RegisterRoutes(r, eng)
	r.GET("/health", health.New(db, appLogger).Check)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Infow("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	appLogger.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("server shutdown failed", "error", err)
	}
}

// openDatabase connects to the snapshot database with retries and prepares
// its schema: SQL migrations for postgres, AutoMigrate for sqlite.
func openDatabase(ctx context.Context) (*gorm.DB, error) {
	retryCfg := dbConfig.LoadRetryConfigFromEnv()

	db, err := retry.DoWithResult(ctx, retryCfg, database.New)
	if err != nil {
		return nil, err
	}

	if database.DriverFromEnv() == database.DriverPostgres {
		if err := migrate.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}
	if err := snapshot.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
