package quiz

import "testing"

func validQuestion() Question {
	return Question{
		Text: "What is a closure?",
		Options: []Option{
			{Text: "A function with captured variables"},
			{Text: "A loop"},
			{Text: "A type"},
			{Text: "A package"},
		},
		CorrectIndex: 0,
	}
}

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Question)
		wantErr bool
	}{
		{"valid", func(q *Question) {}, false},
		{"empty text", func(q *Question) { q.Text = "" }, true},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }, true},
		{"index too high", func(q *Question) { q.CorrectIndex = 4 }, true},
		{"negative index", func(q *Question) { q.CorrectIndex = -1 }, true},
		{"blank option", func(q *Question) { q.Options[2].Text = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			if err := q.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProvenanceString(t *testing.T) {
	fb := Provenance{Fallback: true, Reason: "fallback: parse failed"}
	if fb.String() != "fallback: parse failed" {
		t.Errorf("got %q", fb.String())
	}
	m := Provenance{Model: "gemini-2.0-flash"}
	if m.String() != "model: gemini-2.0-flash" {
		t.Errorf("got %q", m.String())
	}
}
