// Package manifest records the images written by an extract run.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/pdfimages/internal/pipeline"
)

const (
	metaSource    = "source"
	metaOutputDir = "output_dir"
	metaCreated   = "created"
)

// Entry describes one saved image
type Entry struct {
	Page        int     `yaml:"page" json:"page" parquet:"page"`
	Image       int     `yaml:"image" json:"image" parquet:"image"`
	File        string  `yaml:"file" json:"file" parquet:"file"`
	SizeKB      float64 `yaml:"size_kb" json:"size_kb" parquet:"size_kb"`
	Width       int     `yaml:"width" json:"width" parquet:"width"`
	Height      int     `yaml:"height" json:"height" parquet:"height"`
	HasMask     bool    `yaml:"has_mask" json:"has_mask" parquet:"has_mask"`
	Fingerprint string  `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty" parquet:"fingerprint"`
}

// Manifest lists the output of one extract run
type Manifest struct {
	Source    string  `yaml:"source" json:"source"`
	OutputDir string  `yaml:"output_dir" json:"output_dir"`
	Created   string  `yaml:"created" json:"created"`
	Entries   []Entry `yaml:"entries" json:"entries"`
}

// FromResult builds a manifest from an extract result
func FromResult(source string, result *pipeline.Result) *Manifest {
	m := &Manifest{
		Source:    source,
		OutputDir: result.OutputDir,
		Created:   time.Now().Format(time.RFC3339),
		Entries:   make([]Entry, 0, len(result.Saved)),
	}
	for _, s := range result.Saved {
		m.Entries = append(m.Entries, Entry{
			Page:        s.Page,
			Image:       s.Image,
			File:        filepath.Base(s.Path),
			SizeKB:      s.SizeKiB,
			Width:       s.Width,
			Height:      s.Height,
			HasMask:     s.HasMask,
			Fingerprint: s.Fingerprint,
		})
	}
	return m
}

// Save writes m to path as YAML or Parquet, chosen by the file extension
func Save(path string, m *Manifest) error {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return saveYAML(path, m)
	case ".parquet":
		return saveParquet(path, m)
	default:
		return fmt.Errorf("unsupported manifest format: %s (supported: .yaml, .yml, .parquet)", ext)
	}
}

// Load reads a manifest written by Save
func Load(path string) (*Manifest, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".parquet":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s (supported: .yaml, .yml, .parquet)", ext)
	}
}

func saveYAML(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	slog.Info("Manifest saved", "path", path, "entries", len(m.Entries))
	return nil
}

func loadYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

func saveParquet(path string, m *Manifest) error {
	err := parquet.WriteFile(path, m.Entries,
		parquet.KeyValueMetadata(metaSource, m.Source),
		parquet.KeyValueMetadata(metaOutputDir, m.OutputDir),
		parquet.KeyValueMetadata(metaCreated, m.Created),
	)
	if err != nil {
		return fmt.Errorf("failed to write parquet manifest: %w", err)
	}

	slog.Info("Manifest saved", "path", path, "entries", len(m.Entries))
	return nil
}

func loadParquet(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet manifest opened", "path", path, "num_rows", pf.NumRows())

	m := &Manifest{}
	m.Source, _ = pf.Lookup(metaSource)
	m.OutputDir, _ = pf.Lookup(metaOutputDir)
	m.Created, _ = pf.Lookup(metaCreated)

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		m.Entries = append(m.Entries, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return m, nil
}
