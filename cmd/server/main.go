package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmello/flagforge/internal/api"
	"github.com/rmello/flagforge/internal/config"
	"github.com/rmello/flagforge/internal/db"
	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/refresh"
	"github.com/rmello/flagforge/internal/repository/sqlite"
	"github.com/rmello/flagforge/internal/services"
	"github.com/rmello/flagforge/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("FlagForge Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("snapshot_workers=%d", cfg.SnapshotWorkers)
	log.Debug("snapshot_queue=%d", cfg.SnapshotQueue)
	log.Debug("refresh_interval=%s", cfg.RefreshInterval)
	log.Debug("grant_ttl=%s", cfg.GrantTTL)
	log.Debug("token_ttl=%s", cfg.TokenTTL)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	userRepo := sqlite.NewUserRepository(database.DB)
	challengeRepo := sqlite.NewChallengeRepository(database.DB)
	contestRepo := sqlite.NewContestRepository(database.DB)
	participantRepo := sqlite.NewParticipantRepository(database.DB)
	solveRepo := sqlite.NewSolveRepository(database.DB)

	// Services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	contestService := services.NewContestService(contestRepo, participantRepo, cfg.GrantTTL)
	challengeService := services.NewChallengeService(challengeRepo, solveRepo, userRepo, contestService)
	submissionService := services.NewSubmissionService(challengeRepo, solveRepo, contestService)
	scoreboardService := services.NewScoreboardService(contestService, participantRepo, solveRepo)

	snapshotPool := worker.NewPool(cfg.SnapshotWorkers, cfg.SnapshotQueue)
	refresher := refresh.NewScheduler(scoreboardService, cfg.RefreshInterval)

	srv := &api.Server{
		Auth:         authService,
		Challenges:   challengeService,
		Contests:     contestService,
		Submissions:  submissionService,
		Scoreboard:   scoreboardService,
		Refresher:    refresher,
		SnapshotPool: snapshotPool,
	}

	ctx, cancel := context.WithCancel(context.Background())
	snapshotPool.Start(ctx)
	refresher.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping refresh scheduler and worker pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	refresher.Stop()
	snapshotPool.Stop()

	log.Info("===========================================")
	log.Info("FlagForge Server Stopped")
	log.Info("===========================================")
}
