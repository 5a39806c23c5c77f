package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/cogniquiz/internal/chunking"
	"github.com/abhisek/cogniquiz/internal/quiz"
)

type progressKey struct{ student, course string }

// Memory is an in-process implementation of every repository, for tests
// and ephemeral runs.
type Memory struct {
	mu       sync.RWMutex
	courses  map[string]quiz.Course
	chunks   map[string][]chunking.Chunk
	quizzes  map[string]*quiz.Quiz
	results  map[string]*quiz.Result // keyed by quiz ID
	order    []string                // quiz IDs in result insertion order
	progress map[progressKey]quiz.Progress
	requests []LLMRequest
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		courses:  make(map[string]quiz.Course),
		chunks:   make(map[string][]chunking.Chunk),
		quizzes:  make(map[string]*quiz.Quiz),
		results:  make(map[string]*quiz.Result),
		progress: make(map[progressKey]quiz.Progress),
	}
}

func (m *Memory) ReplaceChunks(_ context.Context, courseID string, chunks []chunking.Chunk) error {
	cp := make([]chunking.Chunk, len(chunks))
	for i, c := range chunks {
		c.CourseID = courseID
		cp[i] = c
	}
	slices.SortFunc(cp, func(a, b chunking.Chunk) int { return cmp.Compare(a.Index, b.Index) })

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(cp) == 0 {
		delete(m.chunks, courseID)
		return nil
	}
	m.chunks[courseID] = cp
	return nil
}

func (m *Memory) Chunks(_ context.Context, courseID string) ([]chunking.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.chunks[courseID]), nil
}

func (m *Memory) DeleteChunks(_ context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, courseID)
	return nil
}

func (m *Memory) CountChunks(_ context.Context, courseID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks[courseID]), nil
}

func (m *Memory) SaveCourse(_ context.Context, c quiz.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	return nil
}

func (m *Memory) GetCourse(_ context.Context, id string) (quiz.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return quiz.Course{}, fmt.Errorf("course %s: %w", id, quiz.ErrNotFound)
	}
	return c, nil
}

func (m *Memory) ListCourses(_ context.Context) ([]quiz.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]quiz.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b quiz.Course) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) SaveQuiz(_ context.Context, q *quiz.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[q.ID]; ok {
		return fmt.Errorf("quiz %s already exists", q.ID)
	}
	cp := *q
	cp.Questions = slices.Clone(q.Questions)
	m.quizzes[q.ID] = &cp
	return nil
}

func (m *Memory) GetQuiz(_ context.Context, id string) (*quiz.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", id, quiz.ErrNotFound)
	}
	cp := *q
	cp.Questions = slices.Clone(q.Questions)
	return &cp, nil
}

func (m *Memory) SaveResult(_ context.Context, r *quiz.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[r.QuizID]; ok {
		return fmt.Errorf("quiz %s: %w", r.QuizID, quiz.ErrAlreadySubmitted)
	}
	cp := *r
	cp.Answers = slices.Clone(r.Answers)
	m.results[r.QuizID] = &cp
	m.order = append(m.order, r.QuizID)
	return nil
}

func (m *Memory) GetResult(_ context.Context, quizID string) (*quiz.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[quizID]
	if !ok {
		return nil, fmt.Errorf("result of quiz %s: %w", quizID, quiz.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

// ListResults returns a student's results on a course, most recent first.
// Results with equal timestamps keep reverse insertion order.
func (m *Memory) ListResults(_ context.Context, studentID, courseID string) ([]*quiz.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*quiz.Result
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.results[m.order[i]]
		if r.StudentID == studentID && r.CourseID == courseID {
			cp := *r
			out = append(out, &cp)
		}
	}
	slices.SortStableFunc(out, func(a, b *quiz.Result) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *Memory) RecentScores(ctx context.Context, studentID, courseID string, limit int) ([]float64, error) {
	results, err := m.ListResults(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.ScorePercent
	}
	return out, nil
}

func (m *Memory) PassedCount(_ context.Context, studentID, courseID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.results {
		if r.StudentID == studentID && r.CourseID == courseID && r.Passed {
			n++
		}
	}
	return n, nil
}

func (m *Memory) SetProgress(_ context.Context, p quiz.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[progressKey{p.StudentID, p.CourseID}] = p
	return nil
}

func (m *Memory) GetProgress(_ context.Context, studentID, courseID string) (quiz.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[progressKey{studentID, courseID}]
	if !ok {
		return quiz.Progress{}, fmt.Errorf("progress of %s on %s: %w", studentID, courseID, quiz.ErrNotFound)
	}
	return p, nil
}

func (m *Memory) AppendLLMRequest(_ context.Context, rec LLMRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.requests) + 1)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.requests = append(m.requests, rec)
	return nil
}

func (m *Memory) RecentLLMRequests(_ context.Context, limit int) ([]LLMRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.requests)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) LLMUsage(_ context.Context) ([]LLMUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type key struct{ purpose, model string }
	byKey := make(map[key]*LLMUsage)
	latency := make(map[key]int64)
	for _, r := range m.requests {
		k := key{r.Purpose, r.Model}
		u, ok := byKey[k]
		if !ok {
			u = &LLMUsage{Purpose: r.Purpose, Model: r.Model}
			byKey[k] = u
		}
		u.Requests++
		if !r.Success {
			u.Failures++
		}
		u.InputTokens += r.InputTokens
		u.OutputTokens += r.OutputTokens
		latency[k] += r.LatencyMs
	}

	out := make([]LLMUsage, 0, len(byKey))
	for k, u := range byKey {
		u.AvgLatencyMs = float64(latency[k]) / float64(u.Requests)
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b LLMUsage) int {
		return cmp.Or(cmp.Compare(a.Purpose, b.Purpose), cmp.Compare(a.Model, b.Model))
	})
	return out, nil
}
