// Package api exposes indexing, quiz generation, submission and
// recommendations over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/cogniquiz/internal/chunking"
	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/rag"
)

// Indexer chunks and queries course content.
type Indexer interface {
	Index(ctx context.Context, course quiz.Course, text string) (int, error)
	Stats(ctx context.Context, courseID string) (rag.Stats, error)
	ByKeyword(ctx context.Context, courseID, keyword string, limit int) ([]chunking.Chunk, error)
}

// Generator creates quizzes.
type Generator interface {
	Generate(ctx context.Context, spec quiz.Spec) (*quiz.Quiz, error)
}

// Evaluator grades submissions and gives study advice.
type Evaluator interface {
	Evaluate(ctx context.Context, q *quiz.Quiz, sub quiz.Submission) (*quiz.Result, error)
	Recommendations(ctx context.Context, studentID, courseID string) ([]string, error)
}

// ProgressReader reads enrollment progress.
type ProgressReader interface {
	Get(ctx context.Context, studentID, courseID string) (quiz.Progress, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Deps are the collaborators behind the HTTP handlers.
type Deps struct {
	Indexer          Indexer
	Generator        Generator
	Quizzes          quiz.Repository
	Evaluator        Evaluator
	Progress         ProgressReader
	DefaultQuestions int
	Health           map[string]HealthChecker
}

// Options configure the router.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Server holds the handlers' dependencies.
type Server struct {
	deps   Deps
	logger *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Deps, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 3 * time.Minute
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if deps.DefaultQuestions <= 0 {
		deps.DefaultQuestions = 5
	}
	s := &Server{deps: deps, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)

	r.Route("/courses/{courseID}", func(r chi.Router) {
		r.Post("/index", s.indexCourse)
		r.Get("/stats", s.courseStats)
		r.Get("/search", s.searchCourse)
	})

	r.Post("/quizzes", s.createQuiz)
	r.Get("/quizzes/{quizID}", s.getQuiz)
	r.Post("/quizzes/{quizID}/submit", s.submitQuiz)
	r.Get("/quizzes/{quizID}/result", s.getResult)

	r.Route("/students/{studentID}/courses/{courseID}", func(r chi.Router) {
		r.Get("/recommendations", s.recommendations)
		r.Get("/progress", s.progress)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
