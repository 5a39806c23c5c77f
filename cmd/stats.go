package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cogniquiz/internal/ui/components"
	"github.com/abhisek/cogniquiz/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats [course-id]",
	Short: "Show index statistics for a course, or list indexed courses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()

		if len(args) == 0 {
			courses, err := a.Backend.ListCourses(ctx)
			if err != nil {
				return fmt.Errorf("list courses: %w", err)
			}
			if len(courses) == 0 {
				fmt.Fprintln(out, "No courses indexed yet.")
				return nil
			}

			fmt.Fprintf(out, "%-24s  %-36s  %6s\n", "Course", "Title", "Chunks")
			fmt.Fprintln(out, strings.Repeat("─", 70))
			for _, c := range courses {
				n, err := a.Backend.CountChunks(ctx, c.ID)
				if err != nil {
					return fmt.Errorf("count chunks: %w", err)
				}
				fmt.Fprintf(out, "%-24s  %-36s  %6d\n", truncate(c.ID, 24), truncate(c.Title, 36), n)
			}
			return nil
		}

		stats, err := a.Content.Stats(ctx, args[0])
		if err != nil {
			return fmt.Errorf("course stats: %w", err)
		}
		if stats.ChunkCount == 0 {
			fmt.Fprintln(out, theme.Warning.Render("Course "+args[0]+" has no indexed content."))
			return nil
		}
		fmt.Fprintln(out, components.Card("Course "+args[0],
			components.Field("Chunks", fmt.Sprint(stats.ChunkCount)),
			components.Field("Characters", fmt.Sprint(stats.TotalCharacters)),
			components.Field("Avg chunk", fmt.Sprintf("%.1f", stats.AverageChunkSize)),
		))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <course-id> <keyword>",
	Short: "Find indexed chunks containing a keyword",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		chunks, err := a.Content.ByKeyword(ctx, args[0], args[1], limit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(chunks) == 0 {
			fmt.Fprintln(out, "No matching chunks.")
			return nil
		}
		for _, c := range chunks {
			fmt.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("#%d  [%d:%d]", c.Index, c.StartOffset, c.EndOffset)))
			fmt.Fprintln(out, theme.Body.Render(c.Text))
			fmt.Fprintln(out)
		}
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 5, "Maximum number of chunks to show")
}
