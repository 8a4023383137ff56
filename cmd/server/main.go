package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/corpus"
	"github.com/gmprep/simulado-backend/internal/database"
	"github.com/gmprep/simulado-backend/internal/handler"
	"github.com/gmprep/simulado-backend/internal/logger"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/repository"
	"github.com/gmprep/simulado-backend/internal/router"
	"github.com/gmprep/simulado-backend/internal/service"
	"github.com/gmprep/simulado-backend/internal/validator"
	"github.com/gmprep/simulado-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("database", cfg.DatabaseDriver).
		Str("progress_backend", cfg.ProgressBackend).
		Msg("Starting Simulado Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Database ───────────────────────────────────────────
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// A local SQLite file has no separate migration step.
	if cfg.DatabaseDriver == config.DriverSQLite {
		if err := database.Migrate(db, cfg.DatabaseDriver, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	essayRepo := repository.NewEssayRepository(db)
	tokenRepo := repository.NewTokenRepository(rdb)
	sessionRepo := repository.NewSimulationSessionRepository(rdb)
	essayQueue := repository.NewEssayQueueRepository(rdb)

	store, err := progress.New(cfg.ProgressBackend, progressRepo, progress.NewRedisKV(rdb))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid progress backend")
	}

	// ─── Load Question Corpus ──────────────────────────────────────────
	batches, err := corpus.LoadManifest(cfg.CorpusManifest)
	if err != nil {
		log.Fatal().Err(err).Str("manifest", cfg.CorpusManifest).Msg("Failed to read corpus manifest")
	}
	loader := corpus.NewLoader(batches, log)

	// Load the corpus BEFORE accepting traffic. An empty corpus is retried
	// on the next request.
	if questions, err := loader.LoadAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Corpus prewarm failed")
	} else {
		log.Info().Int("questions", len(questions)).Interface("by_subject", corpus.CountBySubject(questions)).Msg("Corpus loaded")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, tokenRepo)
	studyService := service.NewStudyService(loader, store)
	simulationService := service.NewSimulationService(loader, sessionRepo, store, cfg.SimulationDuration, log)
	progressService := service.NewProgressService(store)
	essayService := service.NewEssayService(essayQueue, essayRepo, store)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Question:   handler.NewQuestionHandler(studyService),
		Simulation: handler.NewSimulationHandler(simulationService),
		Progress:   handler.NewProgressHandler(progressService),
		Essay:      handler.NewEssayHandler(essayService),
		WS:         handler.NewWSHandler(simulationService, sessionRepo, log, cfg.AllowedOrigins),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": db.PingContext,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		}),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workers, workerCtx := errgroup.WithContext(workerCtx)

	for i := 0; i < max(cfg.EssayWorkers, 1); i++ {
		essayWorker := worker.NewEssayWorker(essayQueue, essayRepo, log)
		workers.Go(func() error {
			essayWorker.Start(workerCtx)
			return nil
		})
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop simulation timers. Sessions that expire while the process is
	// down are submitted on their next read.
	simulationService.Shutdown()

	// 3. Stop background workers and wait for the essay queue to drain.
	workerCancel()
	if err := workers.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
