package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/cogniquiz/internal/app"
	"github.com/abhisek/cogniquiz/internal/config"
	"github.com/abhisek/cogniquiz/internal/logging"
)

// cfg is loaded once in PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cogniquiz",
	Short: "Generate and grade quizzes from course content",
	Long: "CogniQuiz indexes course material, generates multiple-choice quizzes with an LLM " +
		"(or rule-based fallback questions), grades submissions and tracks student progress.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.Log.Level = lvl
		}
		if f, _ := cmd.Flags().GetString("log-format"); f != "" {
			c.Log.Format = f
		}
		if _, err := logging.Setup(os.Stderr, logging.Config{Level: c.Log.Level, Format: c.Log.Format}); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (default ./cogniquiz.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides COGNIQUIZ_DB_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("no-llm", false, "Skip LLM discovery and use fallback questions")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// openApp builds the services from the loaded config and command flags.
func openApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	noLLM, _ := cmd.Flags().GetBool("no-llm")
	a, err := app.New(ctx, cfg, app.Options{DBPath: dbPath, DisableLLM: noLLM})
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return a, nil
}
