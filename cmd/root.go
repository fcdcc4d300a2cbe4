package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "fitroom",
		Short: "Virtual try-on session engine with Gemini-powered image generation",
		Long: `Fitroom combines a model photo and a garment photo into a generated
try-on composite.

It hosts a local web interface over a durable single-user session: uploaded
images are normalized, generated results are kept in a ranked history, and
everything survives restarts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	// Add subcommands
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newExportCmd(&configPath))

	return cmd
}
