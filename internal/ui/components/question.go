// Package components renders quizzes, results and progress for the terminal.
package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/ui/theme"
)

// OptionLabels are the letters shown before each option.
var OptionLabels = []string{"A", "B", "C", "D"}

// OptionIndex converts a letter or 1-based number to an option index.
func OptionIndex(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, l := range OptionLabels {
		if s == l || s == fmt.Sprint(i+1) {
			return i, true
		}
	}
	return 0, false
}

// QuestionView renders a question. When Answer is set the options are
// colored by correctness.
type QuestionView struct {
	Number   int
	Question quiz.Question
	Answer   *quiz.Answer
}

// View renders the question.
func (v QuestionView) View() string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(fmt.Sprintf("%d. %s", v.Number, v.Question.Text)))
	b.WriteString("\n")

	for i, opt := range v.Question.Options {
		label := fmt.Sprint(i + 1)
		if i < len(OptionLabels) {
			label = OptionLabels[i]
		}
		line := fmt.Sprintf("   %s)  %s", label, opt.Text)

		switch {
		case v.Answer == nil:
			line = theme.Body.Render(line)
		case i == v.Answer.CorrectIndex:
			line = theme.Correct.Render(line)
		case i == v.Answer.SelectedIndex:
			line = theme.Incorrect.Render(line)
		default:
			line = theme.Subtitle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if v.Answer != nil && v.Question.Rationale != "" {
		b.WriteString(theme.Hint.Render("   " + v.Question.Rationale))
		b.WriteString("\n")
	}
	return b.String()
}

// ResultCard summarizes a graded result.
func ResultCard(r *quiz.Result) string {
	scoreStyle := theme.Incorrect
	if r.Passed {
		scoreStyle = theme.Correct
	}

	lines := []string{
		theme.Title.Render("Result"),
		field("Score", scoreStyle.Render(fmt.Sprintf("%.1f%% (%d/%d)", r.ScorePercent, r.CorrectCount, r.TotalQuestions))),
		field("Passed", fmt.Sprint(r.Passed)),
		field("Next level", r.NextDifficulty.String()),
		"",
		theme.Body.Render(r.Feedback),
	}
	lines = appendList(lines, "Strengths", r.Strengths)
	lines = appendList(lines, "To review", r.Weaknesses)
	lines = appendList(lines, "Next steps", r.Recommendations)
	return theme.Card.Render(strings.Join(lines, "\n"))
}

// Card wraps content in a bordered box with a title.
func Card(title string, lines ...string) string {
	body := append([]string{theme.Title.Render(title)}, lines...)
	return theme.Card.Render(strings.Join(body, "\n"))
}

// Field renders an aligned "label value" line.
func Field(label, value string) string {
	return field(label, value)
}

func field(label, value string) string {
	return theme.Label.Render(label) + theme.Body.Render(value)
}

func appendList(lines []string, title string, items []string) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, "", theme.Subtitle.Render(title+":"))
	for _, it := range items {
		lines = append(lines, theme.Body.Render("  • "+it))
	}
	return lines
}
