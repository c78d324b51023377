package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables that override values loaded from a config file
const (
	EnvUseThreshold     = "PDFIMAGES_USE_THRESHOLD"
	EnvThresholdKB      = "PDFIMAGES_THRESHOLD_KB"
	EnvRemoveDuplicates = "PDFIMAGES_REMOVE_DUPLICATES"
	EnvPHashSize        = "PDFIMAGES_PHASH_SIZE"
	EnvPHashThreshold   = "PDFIMAGES_PHASH_THRESHOLD"
)

const (
	DefaultUseThreshold     = true
	DefaultThresholdKB      = 10
	DefaultRemoveDuplicates = true
	DefaultPHashSize        = 8
	DefaultPHashThreshold   = 5
)

// ErrInvalidOptions is wrapped by every validation failure
var ErrInvalidOptions = errors.New("invalid options")

// Options controls which images a run keeps
type Options struct {
	UseThreshold     bool `yaml:"use_threshold"`
	ThresholdKB      int  `yaml:"threshold_kb"`
	RemoveDuplicates bool `yaml:"remove_duplicates"`
	PHashSize        int  `yaml:"phash_size"`
	PHashThreshold   int  `yaml:"phash_threshold"`
}

// Default returns the options used when nothing else is configured
func Default() Options {
	return Options{
		UseThreshold:     DefaultUseThreshold,
		ThresholdKB:      DefaultThresholdKB,
		RemoveDuplicates: DefaultRemoveDuplicates,
		PHashSize:        DefaultPHashSize,
		PHashThreshold:   DefaultPHashThreshold,
	}
}

// Load reads a YAML options file on top of the defaults.
// Keys missing from the file keep their default value.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return opts, nil
}

// ApplyEnv overrides fields from PDFIMAGES_* environment variables
func (o *Options) ApplyEnv() error {
	if err := envBool(EnvUseThreshold, &o.UseThreshold); err != nil {
		return err
	}
	if err := envInt(EnvThresholdKB, &o.ThresholdKB); err != nil {
		return err
	}
	if err := envBool(EnvRemoveDuplicates, &o.RemoveDuplicates); err != nil {
		return err
	}
	if err := envInt(EnvPHashSize, &o.PHashSize); err != nil {
		return err
	}
	return envInt(EnvPHashThreshold, &o.PHashThreshold)
}

// Validate checks the option ranges. A run refuses to start with invalid options.
func (o Options) Validate() error {
	if o.UseThreshold && o.ThresholdKB <= 0 {
		return fmt.Errorf("%w: threshold_kb must be a positive integer, got %d", ErrInvalidOptions, o.ThresholdKB)
	}
	if o.PHashSize <= 0 {
		return fmt.Errorf("%w: phash_size must be a positive integer, got %d", ErrInvalidOptions, o.PHashSize)
	}
	if o.PHashThreshold < 0 {
		return fmt.Errorf("%w: phash_threshold must not be negative, got %d", ErrInvalidOptions, o.PHashThreshold)
	}
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = b
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = n
	return nil
}
