package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdfimages/internal/manifest"
	"github.com/lehigh-university-libraries/pdfimages/internal/pipeline"
)

func newExtractCmd() *cobra.Command {
	var flags optionFlags
	var outputDir string
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Save the images of a PDF as PNG files",
		Long: `Saves every image that passes the size and duplicate filters as
page_<page>-image_<n>.png, where page is zero-based and n counts images on
the page from one. Soft masks are applied as the alpha channel.

An image that cannot be decoded or saved is skipped with a warning and the
run continues.`,
		Example: `  # Extract next to the PDF, into extracted_img_from_report.pdf/
  pdfimages extract report.pdf

  # Extract into a folder and record what was written
  pdfimages extract report.pdf --output ./images --manifest images.yaml

  # Write a Parquet manifest with a looser duplicate tolerance
  pdfimages extract report.pdf --manifest images.parquet --phash-threshold 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfPath := args[0]

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			if outputDir == "" {
				outputDir = defaultOutputDir(pdfPath)
			}

			p, err := pipeline.New(opts, printLine(cmd))
			if err != nil {
				return err
			}

			result, err := p.Extract(pdfPath, outputDir)
			if err != nil {
				return err
			}

			printExtractSummary(cmd.OutOrStdout(), result)

			if manifestPath != "" {
				if err := manifest.Save(manifestPath, manifest.FromResult(pdfPath, result)); err != nil {
					return fmt.Errorf("failed to save manifest: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Manifest:      %s\n", manifestPath)
			}

			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output folder (default: extracted_img_from_<pdf> next to the PDF)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Write a manifest of saved images (.yaml, .yml or .parquet)")

	return cmd
}

func printExtractSummary(w io.Writer, result *pipeline.Result) {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Extraction Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Output folder: %s\n", result.OutputDir)
	fmt.Fprintf(w, "Accepted:      %d\n", result.Accepted)
	fmt.Fprintf(w, "Saved:         %d\n", len(result.Saved))
	fmt.Fprintf(w, "Too small:     %d\n", result.TooSmall)
	fmt.Fprintf(w, "Duplicates:    %d\n", result.Duplicates)
	fmt.Fprintf(w, "Skipped:       %d\n", result.Skipped())

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nSkipped images:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  page %d image %d (%s): %v\n", warning.Page, warning.Image, warning.Stage, warning.Err)
		}
	}
}
