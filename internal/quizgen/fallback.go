package quizgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

// Provenance reasons recorded when generation falls back.
const (
	ReasonNoProvider       = "fallback: no provider configured"
	ReasonGenerationFailed = "fallback: generation failed"
	ReasonParseFailed      = "fallback: parse failed"
)

const (
	answerExcerptLen = 50
	sourceExcerptLen = 100
)

var paragraphBreak = regexp.MustCompile(`\n\n+`)

// FallbackQuestions builds count questions from content without a model.
// Paragraphs are used in turn; option 0 quotes the paragraph's first
// sentence and is always the correct one.
func FallbackQuestions(content string, count int) []quiz.Question {
	paragraphs := splitParagraphs(content)
	if len(paragraphs) == 0 {
		paragraphs = []string{strings.TrimSpace(content)}
	}

	questions := make([]quiz.Question, 0, count)
	for i := 0; i < count; i++ {
		sentence := firstSentence(paragraphs[i%len(paragraphs)])

		options := []quiz.Option{{
			Text:      "Correct: " + truncate(sentence, answerExcerptLen),
			Rationale: "Correct answer from the course.",
		}}
		for d := 1; d < quiz.OptionCount; d++ {
			options = append(options, quiz.Option{
				Text:      fmt.Sprintf("Distractor option %d", d),
				Rationale: "Incorrect - not from course content.",
			})
		}

		questions = append(questions, quiz.Question{
			Text:          fmt.Sprintf("Question %d: What is the key concept in this section?", i+1),
			Options:       options,
			CorrectIndex:  0,
			Rationale:     "This reflects the course content.",
			SourceExcerpt: truncate(sentence, sourceExcerptLen),
		})
	}
	return questions
}

func splitParagraphs(content string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(content, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstSentence(paragraph string) string {
	sentence, _, _ := strings.Cut(paragraph, ". ")
	return sentence
}

// truncate cuts s to n runes, appending "..." when anything was dropped.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
