// Package app wires configuration, persistence, caching and the LLM
// provider into the services used by the CLI and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abhisek/cogniquiz/internal/api"
	"github.com/abhisek/cogniquiz/internal/cache"
	"github.com/abhisek/cogniquiz/internal/chunking"
	"github.com/abhisek/cogniquiz/internal/config"
	"github.com/abhisek/cogniquiz/internal/evaluation"
	"github.com/abhisek/cogniquiz/internal/llm"
	"github.com/abhisek/cogniquiz/internal/progress"
	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/quizgen"
	"github.com/abhisek/cogniquiz/internal/rag"
	"github.com/abhisek/cogniquiz/internal/store"
)

// Backend is every repository the services need. Both store.Store and
// store.Memory implement it.
type Backend interface {
	rag.ChunkStore
	quiz.CourseRepository
	quiz.Repository
	quiz.ProgressRepository
	store.LLMRequestLog

	CountChunks(ctx context.Context, courseID string) (int, error)
	ListCourses(ctx context.Context) ([]quiz.Course, error)
	ListResults(ctx context.Context, studentID, courseID string) ([]*quiz.Result, error)
}

// Options tune how New builds the App.
type Options struct {
	// DBPath overrides the configured SQLite DSN.
	DBPath string

	// Provider, when set, is used instead of resolving one from the
	// environment. DisableLLM forces fallback mode.
	Provider   llm.Provider
	DisableLLM bool

	Logger *slog.Logger
}

// App holds the wired services.
type App struct {
	Config    *config.Config
	Backend   Backend
	Cache     *cache.Cache
	Content   *rag.Assembler
	Quizzes   *quizgen.Orchestrator
	Evaluator *evaluation.Evaluator
	Progress  *progress.Tracker

	// Provider is nil when no LLM is configured.
	Provider  llm.Provider
	LLMConfig llm.Config

	logger  *slog.Logger
	closers []func() error
}

// New opens the backend and builds every service.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	backend, err := a.openBackend(ctx, opts.DBPath)
	if err != nil {
		return nil, err
	}
	a.Backend = backend

	ragOpts := []rag.Option{
		rag.WithLogger(logger),
		rag.WithChunker(chunking.New(chunking.Config{
			TargetSize: cfg.Chunking.TargetSize,
			Overlap:    cfg.Chunking.Overlap,
		})),
	}
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL, cfg.Cache.TTL)
		if err != nil {
			// The cache is an optimization; run without it.
			logger.WarnContext(ctx, "context cache unavailable", "error", err)
		} else {
			a.Cache = c
			a.closers = append(a.closers, c.Close)
			ragOpts = append(ragOpts, rag.WithCache(c))
		}
	}
	a.Content = rag.New(backend, backend, ragOpts...)

	switch {
	case opts.DisableLLM:
	case opts.Provider != nil:
		a.Provider = opts.Provider
	default:
		p, llmCfg, err := llm.Resolve(ctx, backend)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("configure LLM provider: %w", err)
		}
		a.Provider, a.LLMConfig = p, llmCfg
	}
	if a.Provider == nil {
		logger.InfoContext(ctx, "no LLM provider configured, quizzes will use fallback questions")
	}

	timeout := a.LLMConfig.Timeout
	if a.LLMConfig.Provider == "" {
		timeout = llm.ConfigFromEnv().Timeout
	}
	genCfg := quizgen.DefaultConfig()
	genCfg.Timeout = timeout

	a.Progress = progress.New(backend, cfg.Quiz.PassingScore, logger)
	a.Quizzes = quizgen.New(a.Content, backend, backend, a.Provider, genCfg,
		quizgen.WithLogger(logger))
	a.Evaluator = evaluation.New(backend, a.Progress, a.Provider,
		evaluation.WithLogger(logger),
		evaluation.WithPassingScore(cfg.Quiz.PassingScore),
		evaluation.WithTimeout(timeout))

	return a, nil
}

func (a *App) openBackend(ctx context.Context, dbPath string) (Backend, error) {
	dbCfg := a.Config.Database
	if dbCfg.Driver == "memory" {
		return store.NewMemory(), nil
	}

	dsn := dbCfg.DSN
	if dbCfg.Driver == store.DriverSQLite || dbCfg.Driver == "" {
		if dbPath != "" {
			dsn = dbPath
		}
		if dsn == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve database path: %w", err)
			}
			dsn = p
		}
	}

	s, err := store.Open(ctx, store.Config{Driver: dbCfg.Driver, DSN: dsn})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

// HealthChecks returns the checks exposed on /healthz.
func (a *App) HealthChecks() map[string]api.HealthChecker {
	checks := map[string]api.HealthChecker{}
	if s, ok := a.Backend.(*store.Store); ok {
		checks["database"] = func(ctx context.Context) error { return s.DB().PingContext(ctx) }
	}
	if a.Cache != nil {
		checks["cache"] = a.Cache.HealthCheck
	}
	return checks
}

// Handler builds the HTTP handler over the App's services.
func (a *App) Handler(opts api.Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = a.logger
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = a.Config.Server.CORSOrigins
	}
	return api.NewRouter(api.Deps{
		Indexer:          a.Content,
		Generator:        a.Quizzes,
		Quizzes:          a.Backend,
		Evaluator:        a.Evaluator,
		Progress:         a.Progress,
		DefaultQuestions: a.Config.Quiz.DefaultQuestions,
		Health:           a.HealthChecks(),
	}, opts)
}

// Close releases the backend and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
