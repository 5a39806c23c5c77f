package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/quiz"
)

const maxBodyBytes = 8 << 20

type indexRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type indexResponse struct {
	CourseID string `json:"course_id"`
	Chunks   int    `json:"chunks"`
}

func (s *Server) indexCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	var req indexRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		req.Title = courseID
	}

	n, err := s.deps.Indexer.Index(r.Context(), quiz.Course{ID: courseID, Title: req.Title}, req.Text)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, indexResponse{CourseID: courseID, Chunks: n})
}

func (s *Server) courseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Indexer.Stats(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type searchHit struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func (s *Server) searchCourse(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondMessage(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, 100)
	}

	chunks, err := s.deps.Indexer.ByKeyword(r.Context(), chi.URLParam(r, "courseID"), q, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	hits := make([]searchHit, len(chunks))
	for i, c := range chunks {
		hits[i] = searchHit{Index: c.Index, Text: c.Text}
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": hits})
}

type createQuizRequest struct {
	CourseID      string `json:"course_id"`
	StudentID     string `json:"student_id"`
	Difficulty    string `json:"difficulty,omitempty"`
	QuestionCount int    `json:"question_count"`
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CourseID == "" || req.StudentID == "" {
		respondMessage(w, http.StatusBadRequest, "course_id and student_id are required")
		return
	}

	spec := quiz.Spec{
		CourseID:      req.CourseID,
		StudentID:     req.StudentID,
		QuestionCount: req.QuestionCount,
	}
	if spec.QuestionCount == 0 {
		spec.QuestionCount = s.deps.DefaultQuestions
	}
	if req.Difficulty != "" {
		lvl, err := difficulty.Parse(req.Difficulty)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		spec.Difficulty = &lvl
	}

	q, err := s.deps.Generator.Generate(r.Context(), spec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newQuizView(q))
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := s.deps.Quizzes.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newQuizView(q))
}

type submitRequest struct {
	StudentID string         `json:"student_id"`
	Answers   map[string]int `json:"answers"`
}

func (s *Server) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StudentID == "" {
		respondMessage(w, http.StatusBadRequest, "student_id is required")
		return
	}

	q, err := s.deps.Quizzes.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := s.deps.Evaluator.Evaluate(r.Context(), q, quiz.Submission{StudentID: req.StudentID, Answers: req.Answers})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Quizzes.GetResult(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.Evaluator.Recommendations(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "courseID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Progress.Get(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "courseID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(s.deps.Health))
	for name, check := range s.deps.Health {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	respondJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
}

// quizView is a quiz as shown to the student taking it, without answers.
type quizView struct {
	ID         string           `json:"id"`
	CourseID   string           `json:"course_id"`
	StudentID  string           `json:"student_id"`
	Title      string           `json:"title"`
	Difficulty difficulty.Level `json:"difficulty"`
	Questions  []questionView   `json:"questions"`
	Provenance quiz.Provenance  `json:"provenance"`
	CreatedAt  time.Time        `json:"created_at"`
}

type questionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

func newQuizView(q *quiz.Quiz) quizView {
	v := quizView{
		ID:         q.ID,
		CourseID:   q.CourseID,
		StudentID:  q.StudentID,
		Title:      q.Title,
		Difficulty: q.Difficulty,
		Questions:  make([]questionView, len(q.Questions)),
		Provenance: q.Provenance,
		CreatedAt:  q.CreatedAt,
	}
	for i, question := range q.Questions {
		opts := make([]string, len(question.Options))
		for j, o := range question.Options {
			opts[j] = o.Text
		}
		v.Questions[i] = questionView{ID: question.ID, Text: question.Text, Options: opts}
	}
	return v
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respondMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
