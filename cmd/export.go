package cmd

import (
	"github.com/spf13/cobra"

	"github.com/atelier-labs/fitroom/internal/archive"
	"github.com/atelier-labs/fitroom/internal/config"
	"github.com/atelier-labs/fitroom/internal/models"
	"github.com/atelier-labs/fitroom/internal/session"
	"github.com/atelier-labs/fitroom/internal/store"
)

func newExportCmd(configPath *string) *cobra.Command {
	var outDir string
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Archive the generated-result history to disk",
		Long: `Exports the persisted result history: decoded image files plus a
metadata file in Parquet or JSONL format.`,
		Example: `  # Archive history as parquet into ./archive
  fitroom export

  # JSONL metadata into a custom directory
  fitroom export --format jsonl --out results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DataPath)
			if err != nil {
				return err
			}
			defer st.Close()

			entries := store.Load[[]models.NormalizedImage](st, session.KeyHistory, nil)
			return archive.Export(entries, outDir, format)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "archive", "Output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "parquet", "Metadata format: parquet or jsonl")

	return cmd
}
