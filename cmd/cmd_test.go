package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

const courseText = `Photosynthesis converts light energy into chemical energy. It happens in chloroplasts.

Cellular respiration releases energy from glucose. Mitochondria carry out most of it.

Enzymes are proteins that speed up reactions. Each enzyme fits a specific substrate.`

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestIndexAndTakeQuiz(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NO_COLOR", "1")

	db := filepath.Join(dir, "cogniquiz.db")
	file := filepath.Join(dir, "biology.md")
	require.NoError(t, os.WriteFile(file, []byte(courseText), 0o644))

	out := execute(t, "", "index", "bio-101", file, "--db", db, "--no-llm", "--title", "Biology")
	assert.Contains(t, out, "Indexed Biology")

	out = execute(t, "", "stats", "--db", db, "--no-llm")
	assert.Contains(t, out, "bio-101")

	out = execute(t, "A\nA\nA\n", "quiz", "take", "--db", db, "--no-llm",
		"--course", "bio-101", "--student", "stu-1", "--questions", "3")
	assert.Contains(t, out, "Quiz: Biology")
	assert.Contains(t, out, "100.0% (3/3)")
	assert.Contains(t, out, "Course progress")

	out = execute(t, "", "progress", "stu-1", "bio-101", "--db", db, "--no-llm")
	assert.Contains(t, out, "30%")

	out = execute(t, "", "search", "bio-101", "mitochondria", "--db", db, "--no-llm")
	assert.Contains(t, out, "Mitochondria carry out most of it.")
}

func TestLoadCourseRejectsNonManifest(t *testing.T) {
	_, _, err := loadCourse([]string{"notes.txt"}, "")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	t.Chdir(t.TempDir())
	out := execute(t, "", "version")
	assert.Contains(t, out, "cogniquiz (devel)")
}

func TestPromptAnswers(t *testing.T) {
	q := &quiz.Quiz{Questions: []quiz.Question{
		{ID: "q1", Text: "First?", Options: make([]quiz.Option, 4)},
		{ID: "q2", Text: "Second?", Options: make([]quiz.Option, 4)},
		{ID: "q3", Text: "Third?", Options: make([]quiz.Option, 4)},
	}}

	var out bytes.Buffer
	answers, err := promptAnswers(strings.NewReader("z\nc\n\n"), &out, q)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"q1": 2}, answers)
	assert.Contains(t, out.String(), "Answer with A-D")
}

func TestCollectAnswersReadsLinesFromFile(t *testing.T) {
	q := &quiz.Quiz{Questions: []quiz.Question{
		{ID: "q1", Text: "First?", Options: make([]quiz.Option, 4)},
		{ID: "q2", Text: "Second?", Options: make([]quiz.Option, 4)},
	}}

	path := filepath.Join(t.TempDir(), "answers.txt")
	require.NoError(t, os.WriteFile(path, []byte("b\n4\n"), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	answers, err := collectAnswers(f, &out, q)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"q1": 1, "q2": 3}, answers)
}
