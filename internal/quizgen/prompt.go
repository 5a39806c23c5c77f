package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/cogniquiz/internal/difficulty"
)

const systemPrompt = `You are an expert educational quiz creator. You write engaging multiple-choice questions derived only from the course content you are given.`

const quizRules = `REQUIREMENTS:
1. Each question must have exactly 4 answer options
2. Exactly ONE option must be correct
3. Questions must be derived ONLY from the provided content
4. Vary the question styles (conceptual, practical, analytical)

MATHEMATICAL CONTENT:
- When the content includes formulas or equations, use them in questions and options
- Use LaTeX for all mathematical expressions: $E = mc^2$ inline, $$\frac{a}{b}$$ for display
- Examples: $\frac{n}{d}$, $x^2$, $a_{n+1}$, $\sqrt{x}$, $\alpha$, $\sum_{i=1}^{n} x_i$, $\int_{a}^{b} f(x) dx$
- Ask about the meaning and application of formulas, not just memorization
- For non-mathematical content, write clear conceptual questions`

const responseExample = `{
  "questions": [
    {
      "question_text": "Question text with $inline math$ if needed",
      "options": [
        {"text": "Option A", "explanation": "Why correct/incorrect"},
        {"text": "Option B", "explanation": "Why correct/incorrect"},
        {"text": "Option C", "explanation": "Why correct/incorrect"},
        {"text": "Option D", "explanation": "Why correct/incorrect"}
      ],
      "correct_option_index": 0,
      "explanation": "Overall explanation",
      "source_context": "Short excerpt of the course content the question is based on"
    }
  ]
}`

// buildQuizPrompt constructs the user message for one quiz.
func buildQuizPrompt(title string, level difficulty.Level, count int, content string) string {
	var b strings.Builder

	b.WriteString("Generate a multiple-choice quiz based EXCLUSIVELY on the following course content.\n\n")
	fmt.Fprintf(&b, "COURSE TITLE: %s\n", title)
	fmt.Fprintf(&b, "DIFFICULTY LEVEL: %s\n", level)
	fmt.Fprintf(&b, "NUMBER OF QUESTIONS: %d\n\n", count)

	b.WriteString("COURSE CONTENT:\n")
	b.WriteString(content)
	b.WriteString("\n\n")

	b.WriteString(quizRules)
	b.WriteString("\n\nRespond ONLY with valid JSON (escape special characters properly):\n")
	b.WriteString(responseExample)

	return b.String()
}
