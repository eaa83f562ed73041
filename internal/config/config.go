// Package config holds the harness configuration and model config parsing.
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/openmot/trackbench/internal/fsutil"
)

// Config is the explicit configuration for one harness invocation. It is
// constructed by the caller and passed into the batch driver; there is no
// process-wide state.
type Config struct {
	// DataDir is the root under which sequence directories live. Each
	// sequence keeps its frames in <DataDir>/<sequence>/images.
	DataDir string

	// ModelsDir is the root for model definition and weight files
	// referenced by model config files.
	ModelsDir string

	// ResultsDir is where trajectory artifacts are written, laid out as
	// <ResultsDir>/<sequence>/<configName>/track.txt. Defaults to
	// <DataDir>/results.
	ResultsDir string

	// SequencesFile is the line-oriented list of sequence identifiers.
	SequencesFile string

	// ModelConfigFile describes the DNN detector. Empty selects the
	// random detector.
	ModelConfigFile string

	// Workers is the number of sequences processed concurrently.
	Workers int

	// HistoryDB is an optional sqlite path for persisting run results.
	HistoryDB string

	// ReportFile is an optional path for the HTML throughput report.
	ReportFile string
}

// Validate applies defaults and rejects unusable configurations.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.SequencesFile == "" {
		return fmt.Errorf("sequences file is required")
	}
	if c.ResultsDir == "" {
		c.ResultsDir = filepath.Join(c.DataDir, "results")
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "models"
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// ModelConfig describes a DNN detector: where its definition and weights
// live and the per-channel mean values subtracted during preprocessing.
type ModelConfig struct {
	Name        string
	ModelFile   string
	WeightsFile string
	MeanValues  [3]float64
}

// LoadModelConfig parses a model config file. The format is line oriented:
//
//	line 1: configuration name (names the output directory)
//	line 2: model definition file, relative to modelsDir
//	line 3: weights file, relative to modelsDir
//	line 4: comma-separated per-channel mean values (optional)
func LoadModelConfig(fsys fsutil.FileSystem, path, modelsDir string) (ModelConfig, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("read model config %s: %w", path, err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return ModelConfig{}, fmt.Errorf("scan model config %s: %w", path, err)
	}

	if len(lines) < 3 || lines[0] == "" || lines[1] == "" || lines[2] == "" {
		return ModelConfig{}, fmt.Errorf("model config %s: want name, model file and weights file lines", path)
	}

	mc := ModelConfig{
		Name:        lines[0],
		ModelFile:   resolveModelPath(modelsDir, lines[1]),
		WeightsFile: resolveModelPath(modelsDir, lines[2]),
		MeanValues:  [3]float64{127.5, 127.5, 127.5},
	}

	if len(lines) > 3 && lines[3] != "" {
		means, err := parseMeanValues(lines[3])
		if err != nil {
			return ModelConfig{}, fmt.Errorf("model config %s: %w", path, err)
		}
		mc.MeanValues = means
	}

	return mc, nil
}

func resolveModelPath(modelsDir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(modelsDir, file)
}

func parseMeanValues(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("mean values %q: want 3 comma-separated numbers", s)
	}
	var means [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("mean value %q: %w", p, err)
		}
		means[i] = v
	}
	return means, nil
}
