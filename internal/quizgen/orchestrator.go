// Package quizgen turns indexed course content into persisted quizzes,
// asking a language model for questions and falling back to questions
// derived from the content itself when the model cannot deliver.
package quizgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/llm"
	"github.com/abhisek/cogniquiz/internal/quiz"
)

// ContentSource supplies the indexed text of a course.
type ContentSource interface {
	ChunkCount(ctx context.Context, courseID string) (int, error)
	FullContext(ctx context.Context, courseID string) (string, error)
}

// Orchestrator generates quizzes. A nil provider is valid and makes every
// quiz a fallback quiz.
type Orchestrator struct {
	content ContentSource
	courses quiz.CourseRepository
	quizzes quiz.Repository
	client  *llm.TextClient
	config  Config
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDs overrides quiz ID generation.
func WithIDs(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// New creates an Orchestrator. provider should already carry retry
// middleware.
func New(content ContentSource, courses quiz.CourseRepository, quizzes quiz.Repository, provider llm.Provider, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		content: content,
		courses: courses,
		quizzes: quizzes,
		config:  cfg,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	if provider != nil {
		client := llm.NewTextClient(provider).WithSystem(systemPrompt).WithTemperature(cfg.Temperature)
		if cfg.MaxTokens > 0 {
			client = client.WithMaxTokens(cfg.MaxTokens)
		}
		o.client = client
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate builds, persists and returns a quiz for spec.
// It fails with quiz.ErrNoContentIndexed when the course has no chunks.
// Model and parse failures never surface; they produce a fallback quiz
// whose Provenance records the reason.
func (o *Orchestrator) Generate(ctx context.Context, spec quiz.Spec) (*quiz.Quiz, error) {
	n, err := o.content.ChunkCount(ctx, spec.CourseID)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if n == 0 {
		return nil, quiz.ErrNoContentIndexed
	}

	course, err := o.course(ctx, spec.CourseID)
	if err != nil {
		return nil, err
	}

	level, err := o.pickDifficulty(ctx, spec)
	if err != nil {
		return nil, err
	}
	count := o.config.ClampCount(spec.QuestionCount)

	content, err := o.content.FullContext(ctx, spec.CourseID)
	if err != nil {
		return nil, fmt.Errorf("assemble context: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, quiz.ErrNoContentIndexed
	}

	o.logger.InfoContext(ctx, "generating quiz",
		"course_id", course.ID,
		"student_id", spec.StudentID,
		"difficulty", level.String(),
		"questions", count,
		"context_chars", len(content),
	)

	questions, prov := o.questions(ctx, course, level, count, content)

	q := &quiz.Quiz{
		ID:         o.newID(),
		CourseID:   course.ID,
		StudentID:  spec.StudentID,
		Title:      "Quiz: " + course.Title,
		Difficulty: level,
		Questions:  questions,
		Provenance: prov,
		CreatedAt:  o.now().UTC(),
	}
	for i := range q.Questions {
		q.Questions[i].ID = fmt.Sprintf("%s-q%d", q.ID, i+1)
	}

	saveCtx, cancel, err := persistContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := o.quizzes.SaveQuiz(saveCtx, q); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	return q, nil
}

// persistTimeout bounds the save of a quiz whose caller deadline already
// passed during generation.
const persistTimeout = 5 * time.Second

// persistContext returns the context to save under. A caller that
// cancelled gets its error back. A caller whose deadline expired still gets
// the fallback quiz, saved under a short detached deadline.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	err := ctx.Err()
	switch {
	case err == nil:
		return ctx, func() {}, nil
	case errors.Is(err, context.DeadlineExceeded):
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		return saveCtx, cancel, nil
	default:
		return nil, nil, err
	}
}

// questions asks the model for count questions and falls back on any
// failure, including the generation timeout and cancellation.
func (o *Orchestrator) questions(ctx context.Context, course quiz.Course, level difficulty.Level, count int, content string) ([]quiz.Question, quiz.Provenance) {
	if o.client == nil {
		return o.fallback(ctx, course.ID, content, count, ReasonNoProvider, nil)
	}

	genCtx := ctx
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	prompt := buildQuizPrompt(course.Title, level, count, content)
	raw, err := o.client.Call(llm.WithPurpose(genCtx, llm.PurposeQuizGeneration), prompt)
	if err != nil {
		return o.fallback(ctx, course.ID, content, count, ReasonGenerationFailed, err)
	}

	questions, err := ParseQuestions(raw, o.config.Validators)
	if err != nil {
		return o.fallback(ctx, course.ID, content, count, ReasonParseFailed, err)
	}
	if len(questions) > count {
		questions = questions[:count]
	}

	return questions, quiz.Provenance{Model: o.client.ModelID()}
}

func (o *Orchestrator) fallback(ctx context.Context, courseID, content string, count int, reason string, cause error) ([]quiz.Question, quiz.Provenance) {
	attrs := []any{"course_id", courseID, "reason", reason}
	if cause != nil {
		attrs = append(attrs, "error", cause)
		var pe *ParseError
		if errors.As(cause, &pe) {
			attrs = append(attrs, "stage", pe.Stage)
		}
	}
	o.logger.WarnContext(ctx, "quiz generation fell back", attrs...)

	return FallbackQuestions(content, count), quiz.Provenance{Fallback: true, Reason: reason}
}

// pickDifficulty returns the requested level or one derived from the
// student's recent scores on the course.
func (o *Orchestrator) pickDifficulty(ctx context.Context, spec quiz.Spec) (difficulty.Level, error) {
	if spec.Difficulty != nil {
		return *spec.Difficulty, nil
	}
	scores, err := o.quizzes.RecentScores(ctx, spec.StudentID, spec.CourseID, o.config.HistoryWindow)
	if err != nil {
		return 0, fmt.Errorf("load score history: %w", err)
	}
	return difficulty.Initial(scores), nil
}

// course looks up the course title, using the ID when none was registered.
func (o *Orchestrator) course(ctx context.Context, id string) (quiz.Course, error) {
	c, err := o.courses.GetCourse(ctx, id)
	if errors.Is(err, quiz.ErrNotFound) {
		return quiz.Course{ID: id, Title: id}, nil
	}
	if err != nil {
		return quiz.Course{}, fmt.Errorf("load course: %w", err)
	}
	return c, nil
}
