package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/abhisek/cogniquiz/internal/app"
	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/ui/components"
	"github.com/abhisek/cogniquiz/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate and take quizzes",
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz for a student",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := generateQuiz(ctx, cmd, a)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printQuizHeader(out, q)
		for i, question := range q.Questions {
			fmt.Fprintln(out, components.QuestionView{Number: i + 1, Question: question}.View())
		}
		fmt.Fprintln(out, theme.Hint.Render("Take it with: cogniquiz quiz take "+q.ID+" --student "+q.StudentID))
		return nil
	},
}

var quizTakeCmd = &cobra.Command{
	Use:   "take [quiz-id]",
	Short: "Answer a quiz interactively and get graded",
	Long: "Take an existing quiz by ID, or generate a new one with --course and take it " +
		"immediately. On a terminal the quiz opens as an interactive form; otherwise " +
		"answers are read one per line as A-D (or 1-4), blank to skip.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var q *quiz.Quiz
		if len(args) == 1 {
			q, err = a.Backend.GetQuiz(ctx, args[0])
			if errors.Is(err, quiz.ErrNotFound) {
				return fmt.Errorf("quiz %s not found", args[0])
			}
		} else {
			q, err = generateQuiz(ctx, cmd, a)
		}
		if err != nil {
			return err
		}

		student, _ := cmd.Flags().GetString("student")
		if student == "" {
			student = q.StudentID
		}

		out := cmd.OutOrStdout()
		printQuizHeader(out, q)
		answers, err := collectAnswers(cmd.InOrStdin(), out, q)
		if err != nil {
			return err
		}

		res, err := a.Evaluator.Evaluate(ctx, q, quiz.Submission{StudentID: student, Answers: answers})
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}

		fmt.Fprintln(out)
		for i, question := range q.Questions {
			ans := res.Answers[i]
			fmt.Fprintln(out, components.QuestionView{Number: i + 1, Question: question, Answer: &ans}.View())
		}
		fmt.Fprintln(out, components.ResultCard(res))

		p, err := a.Progress.Get(ctx, student, q.CourseID)
		if err != nil {
			return fmt.Errorf("read progress: %w", err)
		}
		fmt.Fprintln(out, components.NewProgressBar("Course progress", p.ProgressPercent, true, 50).View())
		return nil
	},
}

func generateQuiz(ctx context.Context, cmd *cobra.Command, a *app.App) (*quiz.Quiz, error) {
	course, _ := cmd.Flags().GetString("course")
	student, _ := cmd.Flags().GetString("student")
	level, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("questions")

	if course == "" || student == "" {
		return nil, errors.New("--course and --student are required")
	}
	if count == 0 {
		count = cfg.Quiz.DefaultQuestions
	}

	spec := quiz.Spec{CourseID: course, StudentID: student, QuestionCount: count}
	if level != "" {
		l, err := difficulty.Parse(level)
		if err != nil {
			return nil, err
		}
		spec.Difficulty = &l
	}

	q, err := a.Quizzes.Generate(ctx, spec)
	if errors.Is(err, quiz.ErrNoContentIndexed) {
		return nil, fmt.Errorf("course %s has no indexed content; run `cogniquiz index` first", course)
	}
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	return q, nil
}

func printQuizHeader(w io.Writer, q *quiz.Quiz) {
	fmt.Fprintln(w, theme.Title.Render(q.Title))
	fmt.Fprintln(w, theme.Subtitle.Render(fmt.Sprintf("%s · %s · %d questions · %s",
		q.ID, q.Difficulty, len(q.Questions), q.Provenance)))
	fmt.Fprintln(w)
}

// collectAnswers runs the interactive form when in is a terminal and falls
// back to line prompts otherwise.
func collectAnswers(in io.Reader, out io.Writer, q *quiz.Quiz) (map[string]int, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return promptAnswers(in, out, q)
	}

	final, err := tea.NewProgram(components.NewQuizForm(q), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, fmt.Errorf("run quiz form: %w", err)
	}
	form := final.(components.QuizForm)
	if form.Abandoned {
		return nil, errors.New("quiz abandoned, nothing was submitted")
	}
	return form.Answers(), nil
}

// promptAnswers reads one answer line per question. EOF leaves the remaining
// questions unanswered.
func promptAnswers(r io.Reader, w io.Writer, q *quiz.Quiz) (map[string]int, error) {
	in := bufio.NewScanner(r)
	answers := make(map[string]int, len(q.Questions))

	for i, question := range q.Questions {
		fmt.Fprint(w, components.QuestionView{Number: i + 1, Question: question}.View())
		for {
			fmt.Fprint(w, theme.Selected.Render("> "))
			if !in.Scan() {
				if err := in.Err(); err != nil {
					return nil, fmt.Errorf("read answer: %w", err)
				}
				return answers, nil
			}
			line := strings.TrimSpace(in.Text())
			if line == "" {
				break
			}
			idx, ok := components.OptionIndex(line)
			if !ok || idx >= len(question.Options) {
				fmt.Fprintln(w, theme.Warning.Render("Answer with A-D, or leave blank to skip."))
				continue
			}
			answers[question.ID] = idx
			break
		}
		fmt.Fprintln(w)
	}
	return answers, nil
}

func init() {
	for _, c := range []*cobra.Command{quizGenerateCmd, quizTakeCmd} {
		c.Flags().StringP("course", "c", "", "Course ID")
		c.Flags().StringP("student", "s", "", "Student ID")
		c.Flags().StringP("difficulty", "d", "", "Difficulty: EASY, MEDIUM, HARD, EXPERT (default from history)")
		c.Flags().IntP("questions", "n", 0, "Number of questions (default from config)")
	}
	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizTakeCmd)
}
