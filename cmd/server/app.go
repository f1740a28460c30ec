package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/config"
	"github.com/tianzhicdev/dogetionary-sub002/internal/events"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
	"github.com/tianzhicdev/dogetionary-sub002/internal/scheduler"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/auth"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/review"
	"github.com/tianzhicdev/dogetionary-sub002/internal/source"
	"github.com/tianzhicdev/dogetionary-sub002/internal/store"
	"github.com/tianzhicdev/dogetionary-sub002/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	questions store.QuestionStore
	db        io.Closer

	jwtService    auth.JWTService
	reviewService review.Service

	eventEmitter *events.InMemoryEventEmitter
	workerPool   *task.WorkerPool
	registry     *prefetch.Registry
	scheduler    *scheduler.Scheduler
}

// newApplication wires the services on top of an already opened question
// store. db may be nil when the caller owns the store's lifetime.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	questions store.QuestionStore,
	db io.Closer,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		questions: questions,
		db:        db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.reviewService = review.NewService(questions, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLoggingHandler(logger))

	app.workerPool = task.NewWorkerPool(task.WorkerPoolConfig{
		WorkerCount: cfg.Prefetch.WorkerCount,
		QueueSize:   cfg.Prefetch.TaskQueueSize,
	}, logger)

	app.registry = prefetch.NewRegistry(app.newQueue, logger)

	app.scheduler, err = scheduler.New(
		app.registry,
		cfg.Prefetch.RefreshCron,
		time.Duration(cfg.Prefetch.IdleTimeoutMinutes)*time.Minute,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh scheduler: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// newQueue builds a user's prefetch queue over the in-process review service.
func (app *application) newQueue(userID uuid.UUID) *prefetch.Queue {
	return prefetch.NewQueue(
		source.NewServiceSource(app.reviewService, userID),
		prefetch.WithID(userID.String()),
		prefetch.WithSubmitter(app.workerPool),
		prefetch.WithEmitter(app.eventEmitter),
		prefetch.WithLogger(app.logger.With(slog.String("user_id", userID.String()))),
	)
}

// Run starts background processing and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	app.workerPool.Start()
	app.scheduler.Start()
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops scheduled refreshes, lets in-flight fetches land, then stops
// the workers and closes the database.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.registry != nil {
		app.registry.Wait()
	}
	if app.workerPool != nil {
		app.workerPool.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
