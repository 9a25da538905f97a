package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/coursegen-api/internal/config"
	"github.com/phrazzld/coursegen-api/internal/events"
	"github.com/phrazzld/coursegen-api/internal/generation"
	"github.com/phrazzld/coursegen-api/internal/lease"
	"github.com/phrazzld/coursegen-api/internal/pipeline"
	"github.com/phrazzld/coursegen-api/internal/platform/gemini"
	"github.com/phrazzld/coursegen-api/internal/platform/redis"
	"github.com/phrazzld/coursegen-api/internal/service"
	"github.com/phrazzld/coursegen-api/internal/service/auth"
	"github.com/phrazzld/coursegen-api/internal/store"
	"github.com/phrazzld/coursegen-api/internal/task"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// application holds the shared dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	stores store.UnitOfWork
	locker lease.Locker
	bus    events.Bus

	// limiter is nil without redis.
	limiter *redis.RateLimiter

	jwtService        auth.JWTService
	generationService service.GenerationService
	courseService     service.CourseService
	jobService        service.JobService

	taskRunner *task.TaskRunner
}

// newApplication wires every component. rdb may be nil, in which case the
// course lease and job events stay in process and rate limiting is off.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	stores store.UnitOfWork,
	rdb *goredis.Client,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		stores: stores,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	if rdb != nil {
		app.locker = redis.NewLocker(rdb, cfg.Redis.ChannelPrefix)
		app.bus = redis.NewEventBus(rdb, cfg.Redis.ChannelPrefix, logger)
		app.limiter = redis.NewRateLimiter(rdb, cfg.Redis.ChannelPrefix)
	} else {
		logger.Warn("redis not configured; course leases and job events are process-local")
		app.locker = lease.NewMemoryLocker()
		app.bus = events.NewInMemoryBus(logger)
	}

	resolver, err := newResolver(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	factory, err := task.NewCourseGenerationTaskFactory(task.Dependencies{
		Stores:   stores,
		Resolver: resolver,
		Locker:   app.locker,
		Pipeline: pipeline.New(cfg.Pipeline.StageTimeout()),
		Events:   app.bus,
		LeaseTTL: cfg.Pipeline.LeaseTTL(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(factory, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           time.Duration(cfg.Task.StuckJobAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: time.Duration(cfg.Task.StuckCheckIntervalMinutes) * time.Minute,
	}, logger)

	if app.generationService, err = service.NewGenerationService(stores, app.taskRunner, factory, logger); err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}
	if app.courseService, err = service.NewCourseService(stores, logger); err != nil {
		return nil, fmt.Errorf("failed to create course service: %w", err)
	}
	if app.jobService, err = service.NewJobService(stores, logger); err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// newResolver uses Gemini when a server key is configured and the template
// generator otherwise. Caller-supplied keys always go to Gemini.
func newResolver(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Resolver, error) {
	resolver := generation.Resolver{
		ForAPIKey: gemini.NewFactory(logger.With("component", "llm_generator"), cfg),
	}
	if cfg.GeminiAPIKey == "" {
		logger.Info("no gemini API key configured; using template generator")
		resolver.Default = generation.NewTemplateGenerator()
		return resolver, nil
	}

	gen, err := gemini.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg)
	if err != nil {
		return generation.Resolver{}, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	resolver.Default = gen
	logger.Info("gemini generator initialized", slog.String("model", cfg.ModelName))
	return resolver, nil
}

// Run serves HTTP and processes generation jobs until ctx is done, then shuts
// both down.
func (app *application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.taskRunner.Run(gctx)
	})
	g.Go(func() error {
		return app.serveHTTP(gctx, srv)
	})

	err := g.Wait()
	app.logger.Info("application shutdown completed")
	return err
}

// serveHTTP runs srv until ctx is done, then drains open requests within the
// configured shutdown timeout.
func (app *application) serveHTTP(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server")
	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
