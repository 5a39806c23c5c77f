package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cogniquiz/internal/content"
	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/ui/components"
)

var indexCmd = &cobra.Command{
	Use:   "index <course-id> <file> | index <manifest.yaml>",
	Short: "Chunk and store course content",
	Long: "Index a text, markdown or xlsx file under a course ID, or a YAML course manifest " +
		"listing several files. Re-indexing replaces the course's previous chunks.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")

		course, text, err := loadCourse(args, title)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Content.Index(ctx, course, text)
		if err != nil {
			return fmt.Errorf("index course: %w", err)
		}
		stats, err := a.Content.Stats(ctx, course.ID)
		if err != nil {
			return fmt.Errorf("course stats: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), components.Card("Indexed "+course.Title,
			components.Field("Course", course.ID),
			components.Field("Chunks", fmt.Sprint(n)),
			components.Field("Characters", fmt.Sprint(stats.TotalCharacters)),
		))
		return nil
	},
}

func loadCourse(args []string, title string) (quiz.Course, string, error) {
	if len(args) == 1 {
		if !content.IsManifest(args[0]) {
			return quiz.Course{}, "", fmt.Errorf("%s is not a course manifest; pass <course-id> <file>", args[0])
		}
		m, err := content.LoadManifest(args[0])
		if err != nil {
			return quiz.Course{}, "", err
		}
		text, err := m.Text()
		if err != nil {
			return quiz.Course{}, "", err
		}
		course := m.Course()
		if title != "" {
			course.Title = title
		}
		return course, text, nil
	}

	text, err := content.LoadFile(args[1])
	if err != nil {
		return quiz.Course{}, "", err
	}
	if title == "" {
		base := filepath.Base(args[1])
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return quiz.Course{ID: args[0], Title: title}, text, nil
}

func init() {
	indexCmd.Flags().StringP("title", "t", "", "Course title (defaults to the file name or manifest title)")
}
