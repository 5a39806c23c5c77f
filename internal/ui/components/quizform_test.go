package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testQuiz(n int) *quiz.Quiz {
	q := &quiz.Quiz{ID: "quiz-1", Title: "Cell biology"}
	for i := range n {
		q.Questions = append(q.Questions, quiz.Question{
			ID:      string(rune('a'+i)) + "-q",
			Text:    "Question text",
			Options: []quiz.Option{{Text: "one"}, {Text: "two"}, {Text: "three"}, {Text: "four"}},
		})
	}
	return q
}

// send feeds keys to the form and returns the final model and last command.
func send(t *testing.T, f QuizForm, keys ...tea.KeyPressMsg) (QuizForm, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = f.Update(k)
		f = m.(QuizForm)
	}
	return f, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestMultiChoice_CursorAndPick(t *testing.T) {
	m := NewMultiChoice(1, testQuiz(1).Questions[0])

	m, picked := m.Update(specialKey(tea.KeyUp))
	if picked || m.Cursor != 0 {
		t.Fatalf("cursor should stay at the top, got %d", m.Cursor)
	}
	m, _ = m.Update(specialKey(tea.KeyDown))
	m, _ = m.Update(keyPress('j'))
	m, picked = m.Update(specialKey(tea.KeyEnter))
	if !picked || m.Chosen != 2 {
		t.Fatalf("expected option C picked, got chosen=%d picked=%v", m.Chosen, picked)
	}

	m, picked = m.Update(keyPress('a'))
	if !picked || m.Chosen != 0 || m.Cursor != 0 {
		t.Fatalf("letter should repick option A, got chosen=%d cursor=%d", m.Chosen, m.Cursor)
	}

	m, picked = m.Update(keyPress('e'))
	if picked || m.Chosen != 0 {
		t.Fatal("out of range letter must be ignored")
	}
}

func TestQuizForm_AnswerAllSubmits(t *testing.T) {
	f := NewQuizForm(testQuiz(3))

	f, cmd := send(t, f, keyPress('b'), specialKey(tea.KeyDown), specialKey(tea.KeyEnter), keyPress('d'))
	if !f.Submitted || f.Abandoned {
		t.Fatal("answering the last question should submit")
	}
	if !isQuit(cmd) {
		t.Fatal("submitting should quit the program")
	}

	got := f.Answers()
	want := map[string]int{"a-q": 1, "b-q": 1, "c-q": 3}
	if len(got) != len(want) {
		t.Fatalf("answers = %v, want %v", got, want)
	}
	for id, idx := range want {
		if got[id] != idx {
			t.Errorf("answer %s = %d, want %d", id, got[id], idx)
		}
	}
}

func TestQuizForm_SkipAndGoBack(t *testing.T) {
	f := NewQuizForm(testQuiz(3))

	f, _ = send(t, f, specialKey(tea.KeyTab), keyPress('c'))
	if f.current != 2 {
		t.Fatalf("expected third question, at %d", f.current)
	}
	f, _ = send(t, f, specialKey(tea.KeyLeft), specialKey(tea.KeyLeft), keyPress('a'))
	if f.current != 1 {
		t.Fatalf("expected second question after answering the first, at %d", f.current)
	}

	f, cmd := send(t, f, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if !f.Submitted || !isQuit(cmd) {
		t.Fatal("ctrl+s should submit early")
	}
	got := f.Answers()
	if len(got) != 2 || got["a-q"] != 0 || got["b-q"] != 2 {
		t.Fatalf("unexpected answers %v", got)
	}
	if _, ok := got["c-q"]; ok {
		t.Fatal("skipped question must be absent")
	}
}

func TestQuizForm_EscAbandons(t *testing.T) {
	f := NewQuizForm(testQuiz(2))

	f, cmd := send(t, f, keyPress('a'), specialKey(tea.KeyEscape))
	if !f.Abandoned || f.Submitted || !isQuit(cmd) {
		t.Fatalf("esc should abandon and quit, got %+v", f)
	}

	f, cmd = send(t, f, keyPress('b'))
	if cmd != nil || len(f.Answers()) != 1 {
		t.Fatal("an abandoned form ignores further keys")
	}
}

func TestQuizForm_View(t *testing.T) {
	f := NewQuizForm(testQuiz(2))
	f, _ = send(t, f, keyPress('a'))

	out := f.render()
	for _, want := range []string{"Cell biology", "Question 2 of 2", "1 answered", "2. Question text", "A)  one", "esc"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}
