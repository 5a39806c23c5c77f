package quizgen

import (
	"time"

	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/llm"
)

// Config controls the behavior of the Orchestrator.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// decoded question. The first failure rejects the whole response.
	Validators []Validator

	// MinQuestions and MaxQuestions bound the requested question count.
	MinQuestions int
	MaxQuestions int

	// HistoryWindow is the number of recent scores used to pick a
	// difficulty when the request does not name one.
	HistoryWindow int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// Timeout bounds one generation call, retries included. When it
	// expires the quiz falls back. Zero leaves the call unbounded.
	Timeout time.Duration
}

// DefaultConfig returns a Config with the structural validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&TextValidator{},
			&OptionCountValidator{},
			&CorrectIndexValidator{},
		},
		MinQuestions:  3,
		MaxQuestions:  20,
		HistoryWindow: difficulty.HistoryWindow,
		MaxTokens:     8192,
		Temperature:   0.7,
		Timeout:       llm.DefaultConfig().Timeout,
	}
}

// ClampCount bounds n to [MinQuestions, MaxQuestions].
func (c Config) ClampCount(n int) int {
	if n < c.MinQuestions {
		return c.MinQuestions
	}
	if n > c.MaxQuestions {
		return c.MaxQuestions
	}
	return n
}
