package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/cogniquiz/internal/llm"
	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/sanitize"
)

// Parse stages reported by ParseError.
const (
	StageSanitize = "sanitize"
	StageSchema   = "schema"
	StageDecode   = "decode"
	StageValidate = "validate"
)

// ParseError means a model response could not be turned into questions.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse quiz response (%s): %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// quizOutput is the raw LLM response before validation.
type quizOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	QuestionText       string         `json:"question_text"`
	Options            []optionOutput `json:"options"`
	CorrectOptionIndex int            `json:"correct_option_index"`
	Explanation        string         `json:"explanation"`
	SourceContext      string         `json:"source_context"`
}

type optionOutput struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

// ParseQuestions sanitizes raw model text, checks it against QuizSchema,
// decodes it and runs validators over every question.
func ParseQuestions(raw string, validators []Validator) ([]quiz.Question, error) {
	payload, err := sanitize.Clean(raw)
	if err != nil {
		return nil, &ParseError{Stage: StageSanitize, Err: err}
	}
	if err := llm.ValidateJSON(QuizSchema, []byte(payload)); err != nil {
		return nil, &ParseError{Stage: StageSchema, Err: err}
	}

	var out quizOutput
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, &ParseError{Stage: StageDecode, Err: err}
	}
	if len(out.Questions) == 0 {
		return nil, &ParseError{Stage: StageDecode, Err: errors.New("response has no questions")}
	}

	questions := make([]quiz.Question, 0, len(out.Questions))
	for i, qo := range out.Questions {
		q := quiz.Question{
			Text:          qo.QuestionText,
			CorrectIndex:  qo.CorrectOptionIndex,
			Rationale:     qo.Explanation,
			SourceExcerpt: qo.SourceContext,
		}
		for _, o := range qo.Options {
			q.Options = append(q.Options, quiz.Option{Text: o.Text, Rationale: o.Explanation})
		}

		for _, v := range validators {
			if verr := v.Validate(&q); verr != nil {
				return nil, &ParseError{
					Stage: StageValidate,
					Err:   fmt.Errorf("question %d: %w", i+1, verr),
				}
			}
		}
		questions = append(questions, q)
	}
	return questions, nil
}
