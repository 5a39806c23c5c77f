package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cogniquiz/internal/ui/components"
	"github.com/abhisek/cogniquiz/internal/ui/theme"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <student-id> <course-id>",
	Short: "Show study recommendations from recent quiz scores",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.Evaluator.Recommendations(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("recommendations: %w", err)
		}
		lines := make([]string, 0, len(recs))
		for _, r := range recs {
			lines = append(lines, theme.Body.Render("• "+r))
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.Card("Recommendations", lines...))
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <student-id> <course-id>",
	Short: "Show a student's course progress and quiz history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		student, course := args[0], args[1]
		p, err := a.Progress.Get(ctx, student, course)
		if err != nil {
			return fmt.Errorf("read progress: %w", err)
		}
		results, err := a.Backend.ListResults(ctx, student, course)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}

		out := cmd.OutOrStdout()
		status := theme.Warning.Render("in progress")
		if p.Completed {
			status = theme.Correct.Render("completed")
		}
		fmt.Fprintln(out, components.Card(student+" · "+course,
			components.Field("Status", status),
			components.NewProgressBar("", p.ProgressPercent, true, 40).View(),
		))

		if len(results) == 0 {
			fmt.Fprintln(out, "No quiz results yet.")
			return nil
		}
		fmt.Fprintf(out, "%-16s  %-19s  %-8s  %7s  %s\n", "Quiz", "Taken", "Level", "Score", "Passed")
		for _, r := range results {
			passed := theme.Incorrect.Render("✗")
			if r.Passed {
				passed = theme.Correct.Render("✓")
			}
			fmt.Fprintf(out, "%-16s  %-19s  %-8s  %6.1f%%  %s\n",
				truncate(r.QuizID, 16),
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.Difficulty,
				r.ScorePercent,
				passed,
			)
		}
		return nil
	},
}
