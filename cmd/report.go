package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdfimages/internal/manifest"
)

func newReportCmd() *cobra.Command {
	var manifestPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a manifest written by extract",
		Long: `Prints a manifest written by extract --manifest as a text table,
JSON or CSV.`,
		Example: `  # Text report
  pdfimages report --manifest images.yaml

  # CSV for a spreadsheet
  pdfimages report --manifest images.parquet --format csv > images.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(manifest.Formats, format) {
				return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(manifest.Formats, ", "))
			}

			m, err := manifest.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}

			return manifest.WriteReport(cmd.OutOrStdout(), m, format)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest file (.yaml, .yml or .parquet)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, csv)")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
