package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "pdfimages",
		Short: "Extract, filter and preview the images embedded in a PDF",
		Long: `pdfimages pulls the raster images out of a PDF document.

Images below a size threshold are skipped and near-identical images are
dropped using a perceptual hash. The result can be previewed as a labeled
contact sheet or saved as PNG files, with an optional manifest.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}
