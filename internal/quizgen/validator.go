package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

// Validator checks a decoded question before it is accepted.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages and logs.
	Name() string

	// Validate returns nil if the question passes.
	Validate(q *quiz.Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// TextValidator rejects questions or options with blank text.
type TextValidator struct{}

func (v *TextValidator) Name() string { return "text" }

func (v *TextValidator) Validate(q *quiz.Question) *ValidationError {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question_text is empty"}
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o.Text) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %d text is empty", i),
			}
		}
	}
	return nil
}

// OptionCountValidator requires exactly quiz.OptionCount options.
type OptionCountValidator struct{}

func (v *OptionCountValidator) Name() string { return "option-count" }

func (v *OptionCountValidator) Validate(q *quiz.Question) *ValidationError {
	if len(q.Options) != quiz.OptionCount {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("got %d options, want %d", len(q.Options), quiz.OptionCount),
		}
	}
	return nil
}

// CorrectIndexValidator requires the correct index to point at an option.
type CorrectIndexValidator struct{}

func (v *CorrectIndexValidator) Name() string { return "correct-index" }

func (v *CorrectIndexValidator) Validate(q *quiz.Question) *ValidationError {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct_option_index %d out of range", q.CorrectIndex),
		}
	}
	return nil
}
