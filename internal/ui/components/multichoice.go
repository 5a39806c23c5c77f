package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/ui/theme"
)

// MultiChoice is a single-question selector. Chosen is -1 until an option
// is picked; picking again replaces the earlier choice.
type MultiChoice struct {
	Number   int
	Question quiz.Question
	Cursor   int
	Chosen   int
}

// NewMultiChoice creates a selector for the n-th question.
func NewMultiChoice(n int, q quiz.Question) MultiChoice {
	return MultiChoice{Number: n, Question: q, Chosen: -1}
}

// Answered reports whether an option has been picked.
func (m MultiChoice) Answered() bool {
	return m.Chosen >= 0
}

// Update moves the cursor with up/down (or k/j) and picks with enter or
// an option letter/number. The bool result is true when a pick happened.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, false
	}

	switch k := kmsg.String(); k {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Question.Options)-1 {
			m.Cursor++
		}
	case "enter", "space":
		m.Chosen = m.Cursor
		return m, true
	default:
		if idx, ok := OptionIndex(k); ok && idx < len(m.Question.Options) {
			m.Cursor, m.Chosen = idx, idx
			return m, true
		}
	}
	return m, false
}

// View renders the question with the cursor and any current pick.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(fmt.Sprintf("%d. %s", m.Number, m.Question.Text)))
	b.WriteString("\n\n")

	for i, opt := range m.Question.Options {
		prefix := "  "
		if i == m.Cursor {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Chosen {
			mark = "•"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, OptionLabels[i], opt.Text)

		switch {
		case i == m.Cursor:
			b.WriteString(theme.Selected.Render(line))
		case i == m.Chosen:
			b.WriteString(theme.Body.Bold(true).Render(line))
		default:
			b.WriteString(theme.Body.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
