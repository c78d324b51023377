package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdfimages/internal/pipeline"
)

func newPreviewCmd() *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "preview <pdf>",
		Short: "Build a contact sheet of the images in a PDF",
		Long: `Builds a contact sheet of every image that passes the size and
duplicate filters, largest first, ten per row, each labeled with its size.

The sheet is written as thumbnail_sheet.png next to the PDF.`,
		Example: `  # Preview with the default filters
  pdfimages preview report.pdf

  # Keep every image, including small ones and duplicates
  pdfimages preview report.pdf --use-threshold=false --remove-duplicates=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			p, err := pipeline.New(opts, printLine(cmd))
			if err != nil {
				return err
			}

			sheet, err := p.Preview(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nContact sheet: %s\n", sheet)
			return nil
		},
	}

	flags.register(cmd.Flags())

	return cmd
}
