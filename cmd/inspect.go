package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdfimages/internal/document"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "List the images referenced by each page of a PDF",
		Long: `Lists every image on every page with its object number, soft mask
and encoded size. Nothing is filtered, decoded or written.`,
		Example: `  pdfimages inspect report.pdf`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := document.Open(args[0])
			if err != nil {
				return err
			}
			defer func() {
				if err := reader.Close(); err != nil {
					slog.Warn("Failed to close document", "err", err)
				}
			}()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Document: %s (%d pages)\n", args[0], reader.PageCount())

			enum := document.NewEnumerator(reader)
			enum.OnPage = func(pageIndex, count int) {
				fmt.Fprintf(w, "\nPage %d: %d images\n", pageIndex, count)
			}

			images := 0
			masked := 0
			unreadable := 0
			var total float64
			for rec, err := range enum.Records() {
				if err != nil {
					return err
				}

				images++
				if rec.Err != nil {
					fmt.Fprintf(w, "  [%d] object %-6d unreadable: %v\n", rec.Sequence, rec.ID, rec.Err)
					unreadable++
					continue
				}

				mask := "-"
				if rec.HasMask() {
					mask = fmt.Sprintf("%d", rec.Mask)
					masked++
				}
				fmt.Fprintf(w, "  [%d] object %-6d mask %-6s %10.2f KB\n", rec.Sequence, rec.ID, mask, rec.SizeKiB())
				total += rec.SizeKiB()
			}

			fmt.Fprintf(w, "\nTotal: %d images (%d with masks, %d unreadable), %.2f KB\n", images, masked, unreadable, total)
			return nil
		},
	}

	return cmd
}
