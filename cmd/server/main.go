package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcusv/linguaflash/internal/api"
	"github.com/marcusv/linguaflash/internal/config"
	"github.com/marcusv/linguaflash/internal/curriculum"
	"github.com/marcusv/linguaflash/internal/db"
	"github.com/marcusv/linguaflash/internal/evaluator"
	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/repository"
	"github.com/marcusv/linguaflash/internal/repository/sqlite"
	"github.com/marcusv/linguaflash/internal/services"
	"github.com/marcusv/linguaflash/internal/session"
	"github.com/marcusv/linguaflash/internal/worker"
)

const (
	maintenanceWorkers   = 1
	maintenanceQueueSize = 8
	reapInterval         = time.Minute
	regressionInterval   = 6 * time.Hour
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("LinguaFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("curriculum_dir=%s", cfg.CurriculumDir)
	log.Debug("evaluator=%s", cfg.Evaluator)
	log.Debug("session_activity_limit=%d", cfg.SessionActivityLimit)
	log.Debug("session_idle_timeout_minutes=%d", cfg.SessionIdleTimeoutMinutes)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load curriculum
	registry, err := curriculum.LoadDir(cfg.CurriculumDir)
	if err != nil {
		log.Error("failed to load curriculum from %s: %v", cfg.CurriculumDir, err)
		os.Exit(1)
	}

	// Initialize repositories
	learnerRepo := sqlite.NewLearnerRepository(database.DB)
	stateRepo := sqlite.NewLearnerStateRepository(database.DB)
	vocabRepo := sqlite.NewVocabularyRepository(database.DB)
	grammarRepo := sqlite.NewGrammarRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)

	// Pick the response evaluator. Multiple-choice exercises are always
	// graded by the rule evaluator; the model evaluator, when configured,
	// grades free-text answers only.
	rule := evaluator.NewRuleEvaluator()
	var eval evaluator.Evaluator = rule
	if cfg.Evaluator == "anthropic" {
		model, err := evaluator.NewAnthropicEvaluator(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		if err != nil {
			log.Error("failed to initialize anthropic evaluator: %v", err)
			os.Exit(1)
		}
		backoff := time.Duration(cfg.EvaluatorRetryBackoffMs) * time.Millisecond
		eval = evaluator.NewHybrid(rule, evaluator.WithRetry(model, backoff))
	}

	manager := session.NewManager(session.Params{
		Learners:      learnerRepo,
		States:        stateRepo,
		Vocabulary:    vocabRepo,
		Grammar:       grammarRepo,
		Sessions:      sessionRepo,
		Curriculum:    registry,
		Evaluator:     eval,
		ActivityLimit: cfg.SessionActivityLimit,
		IdleTimeout:   time.Duration(cfg.SessionIdleTimeoutMinutes) * time.Minute,
	})

	// Maintenance pool: session reaping and grammar regression sweeps
	maintenancePool := worker.NewPool(maintenanceWorkers, maintenanceQueueSize)

	srv := &api.Server{
		DB:         database,
		Learners:   services.NewLearnerService(learnerRepo, stateRepo),
		Sessions:   services.NewSessionService(manager),
		Placement:  services.NewPlacementService(learnerRepo, stateRepo, registry, nil),
		Curriculum: services.NewCurriculumService(registry),
	}

	ctx, cancel := context.WithCancel(context.Background())
	maintenancePool.Start(ctx)
	go runMaintenance(ctx, maintenancePool, manager, learnerRepo, grammarRepo)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping maintenance pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	maintenancePool.Stop()

	log.Info("===========================================")
	log.Info("LinguaFlash Server Stopped")
	log.Info("===========================================")
}

// runMaintenance submits the periodic background jobs until ctx is cancelled.
func runMaintenance(ctx context.Context, pool *worker.Pool, manager *session.Manager, learners repository.LearnerRepository, grammar repository.GrammarRepository) {
	log := logger.Default().WithPrefix("maintenance")

	reapTicker := time.NewTicker(reapInterval)
	defer reapTicker.Stop()
	regressionTicker := time.NewTicker(regressionInterval)
	defer regressionTicker.Stop()

	// Run one regression sweep at startup to catch decay accumulated
	// while the server was down.
	if err := pool.Submit(&worker.RegressionSweepJob{Learners: learners, Grammar: grammar, Now: time.Now}); err != nil {
		log.Warn("failed to submit regression sweep: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-reapTicker.C:
			if err := pool.Submit(&worker.ReapSessionsJob{Sessions: manager}); err != nil {
				log.Warn("failed to submit session reap: %v", err)
			}
		case <-regressionTicker.C:
			if err := pool.Submit(&worker.RegressionSweepJob{Learners: learners, Grammar: grammar, Now: time.Now}); err != nil {
				log.Warn("failed to submit regression sweep: %v", err)
			}
		}
	}
}
