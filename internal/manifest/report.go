package manifest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Formats accepted by WriteReport
var Formats = []string{"text", "json", "csv"}

// WriteReport renders m to w as text, json or csv
func WriteReport(w io.Writer, m *Manifest, format string) error {
	switch format {
	case "text":
		return writeTextReport(w, m)
	case "json":
		return writeJSONReport(w, m)
	case "csv":
		return writeCSVReport(w, m)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeTextReport(w io.Writer, m *Manifest) error {
	var total float64
	masked := 0
	for _, e := range m.Entries {
		total += e.SizeKB
		if e.HasMask {
			masked++
		}
	}

	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "PDF Image Extraction Report")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Source:  %s\n", m.Source)
	fmt.Fprintf(w, "Output:  %s\n", m.OutputDir)
	if m.Created != "" {
		fmt.Fprintf(w, "Created: %s\n", m.Created)
	}
	fmt.Fprintf(w, "Images:  %d (%.2f KB)\n", len(m.Entries), total)
	fmt.Fprintf(w, "Masked:  %d\n", masked)

	if len(m.Entries) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-6s %-6s %12s %11s %-5s %s\n", "Page", "Image", "Size", "Dimensions", "Mask", "File")
	for _, e := range m.Entries {
		mask := "no"
		if e.HasMask {
			mask = "yes"
		}
		_, err := fmt.Fprintf(w, "%-6d %-6d %12s %11s %-5s %s\n",
			e.Page, e.Image,
			fmt.Sprintf("%.2f KB", e.SizeKB),
			fmt.Sprintf("%dx%d", e.Width, e.Height),
			mask, e.File)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeJSONReport(w io.Writer, m *Manifest) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}

func writeCSVReport(w io.Writer, m *Manifest) error {
	writer := csv.NewWriter(w)

	header := []string{"Page", "Image", "File", "Size KB", "Width", "Height", "Has Mask", "Fingerprint"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range m.Entries {
		row := []string{
			strconv.Itoa(e.Page),
			strconv.Itoa(e.Image),
			e.File,
			fmt.Sprintf("%.2f", e.SizeKB),
			strconv.Itoa(e.Width),
			strconv.Itoa(e.Height),
			strconv.FormatBool(e.HasMask),
			e.Fingerprint,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
