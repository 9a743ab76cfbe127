package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var port, configPath string

	cmd := &cobra.Command{
		Use:   "quiz-service",
		Short: "Quiz platform with answer scoring and topic analysis",
		Long: `Serves quizzes, grades submissions and breaks results down by topic using an
external classification service. Without a postgres url the service runs on
an in-memory store seeded with a sample quiz.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envOr("PORT", ""), "port to listen on (default server.port or 8080)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config/config.yaml"), "path to YAML config")
	cmd.AddCommand(
		NewStartCmd(&configPath, &port),
		NewMigrateCmd(&configPath),
		NewImportCmd(&configPath),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
