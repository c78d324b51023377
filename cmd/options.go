package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lehigh-university-libraries/pdfimages/internal/config"
)

// optionFlags holds the filter flags shared by preview and extract
type optionFlags struct {
	configPath       string
	useThreshold     bool
	thresholdKB      int
	removeDuplicates bool
	phashSize        int
	phashThreshold   int
}

func (f *optionFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.configPath, "config", "", "YAML file with extraction options")
	flags.BoolVar(&f.useThreshold, "use-threshold", config.DefaultUseThreshold, "Skip images smaller than --threshold")
	flags.IntVar(&f.thresholdKB, "threshold", config.DefaultThresholdKB, "Minimum image size in KB")
	flags.BoolVar(&f.removeDuplicates, "remove-duplicates", config.DefaultRemoveDuplicates, "Skip images that look like an earlier one")
	flags.IntVar(&f.phashSize, "phash-size", config.DefaultPHashSize, "Perceptual hash size, fingerprints are 4*size^2 bits")
	flags.IntVar(&f.phashThreshold, "phash-threshold", config.DefaultPHashThreshold, "Maximum hash distance counted as a duplicate")
}

// options resolves defaults, the config file, the environment and then any
// flag set explicitly on the command line, in that order
func (f *optionFlags) options(cmd *cobra.Command) (config.Options, error) {
	opts := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	if err := opts.ApplyEnv(); err != nil {
		return opts, err
	}

	flags := cmd.Flags()
	if flags.Changed("use-threshold") {
		opts.UseThreshold = f.useThreshold
	}
	if flags.Changed("threshold") {
		opts.ThresholdKB = f.thresholdKB
	}
	if flags.Changed("remove-duplicates") {
		opts.RemoveDuplicates = f.removeDuplicates
	}
	if flags.Changed("phash-size") {
		opts.PHashSize = f.phashSize
	}
	if flags.Changed("phash-threshold") {
		opts.PHashThreshold = f.phashThreshold
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// defaultOutputDir names the folder extract writes to when --output is not given
func defaultOutputDir(pdfPath string) string {
	return filepath.Join(filepath.Dir(pdfPath), fmt.Sprintf("extracted_img_from_%s", filepath.Base(pdfPath)))
}

// printLine is the pipeline log sink used by the commands
func printLine(cmd *cobra.Command) func(string) {
	return func(line string) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
}
