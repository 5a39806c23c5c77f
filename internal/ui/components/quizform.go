package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/ui/theme"
)

type formKeys struct {
	Move   key.Binding
	Pick   key.Binding
	Next   key.Binding
	Back   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Pick, k.Next, k.Back, k.Submit, k.Quit}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultFormKeys = formKeys{
	Move:   key.NewBinding(key.WithKeys("up", "down", "k", "j"), key.WithHelp("↑↓", "move")),
	Pick:   key.NewBinding(key.WithKeys("enter", "space", "a", "b", "c", "d"), key.WithHelp("enter/a-d", "answer")),
	Next:   key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "skip")),
	Back:   key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "back")),
	Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

// QuizForm walks a student through a quiz one question at a time.
// Answering the last question, or pressing ctrl+s, submits the form.
// Esc abandons it without submitting.
type QuizForm struct {
	quiz      *quiz.Quiz
	questions []MultiChoice
	current   int
	keys      formKeys
	help      help.Model

	Submitted bool
	Abandoned bool
}

// NewQuizForm creates a form for q.
func NewQuizForm(q *quiz.Quiz) QuizForm {
	f := QuizForm{quiz: q, keys: defaultFormKeys, help: help.New()}
	for i, question := range q.Questions {
		f.questions = append(f.questions, NewMultiChoice(i+1, question))
	}
	return f
}

func (f QuizForm) Init() tea.Cmd {
	return nil
}

func (f QuizForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || f.Submitted || f.Abandoned {
		return f, nil
	}

	switch {
	case key.Matches(kmsg, f.keys.Quit):
		f.Abandoned = true
		return f, tea.Quit
	case key.Matches(kmsg, f.keys.Submit):
		f.Submitted = true
		return f, tea.Quit
	case key.Matches(kmsg, f.keys.Next):
		return f.advance()
	case key.Matches(kmsg, f.keys.Back):
		if f.current > 0 {
			f.current--
		}
		return f, nil
	}

	if len(f.questions) == 0 {
		return f, nil
	}
	var picked bool
	f.questions[f.current], picked = f.questions[f.current].Update(kmsg)
	if picked {
		return f.advance()
	}
	return f, nil
}

// advance moves to the next question, submitting after the last one.
func (f QuizForm) advance() (tea.Model, tea.Cmd) {
	if f.current >= len(f.questions)-1 {
		f.Submitted = true
		return f, tea.Quit
	}
	f.current++
	return f, nil
}

func (f QuizForm) View() tea.View {
	return tea.NewView(f.render())
}

func (f QuizForm) render() string {
	if f.Submitted || f.Abandoned || len(f.questions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(f.quiz.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Question %d of %d · %d answered",
		f.current+1, len(f.questions), f.answeredCount())))
	b.WriteString("\n")
	b.WriteString(NewProgressBar("", f.answeredCount()*100/len(f.questions), false, 40).View())
	b.WriteString("\n\n")
	b.WriteString(f.questions[f.current].View())
	b.WriteString("\n")
	b.WriteString(f.help.View(f.keys))
	b.WriteString("\n")
	return b.String()
}

func (f QuizForm) answeredCount() int {
	n := 0
	for _, q := range f.questions {
		if q.Answered() {
			n++
		}
	}
	return n
}

// Answers returns the picked option index per question ID. Skipped
// questions are absent.
func (f QuizForm) Answers() map[string]int {
	out := make(map[string]int, len(f.questions))
	for _, q := range f.questions {
		if q.Answered() {
			out[q.Question.ID] = q.Chosen
		}
	}
	return out
}
