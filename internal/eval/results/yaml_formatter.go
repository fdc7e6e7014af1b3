package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/speechmetrics/cpwer/internal/eval/metrics"
)

// RunConfig represents the configuration section of the results YAML
type RunConfig struct {
	ReferenceDir string `yaml:"referencedir"`
	DatasetPath  string `yaml:"datasetpath"`
	SampleSize   int    `yaml:"samplesize"`
	Concurrency  int    `yaml:"concurrency"`
	Timestamp    string `yaml:"timestamp"`
}

// SampleScore represents a single scored recording
type SampleScore struct {
	URI           string  `yaml:"uri"`
	CpWER         float64 `yaml:"cpwer"`
	Length        float64 `yaml:"length"`
	Substitutions float64 `yaml:"substitutions"`
	Deletions     float64 `yaml:"deletions"`
	Insertions    float64 `yaml:"insertions"`
	Error         string  `yaml:"error,omitempty"`
}

// CorpusScore represents the pooled corpus-level result, computed from the
// summed components of every successful sample
type CorpusScore struct {
	CpWER         float64 `yaml:"cpwer"`
	Length        float64 `yaml:"length"`
	Substitutions float64 `yaml:"substitutions"`
	Deletions     float64 `yaml:"deletions"`
	Insertions    float64 `yaml:"insertions"`
	Samples       int     `yaml:"samples"`
	Failures      int     `yaml:"failures"`
}

// RunResults represents the complete output of one evaluation run
type RunResults struct {
	Config  RunConfig     `yaml:"config"`
	Corpus  CorpusScore   `yaml:"corpus"`
	Samples []SampleScore `yaml:"samples"`
}

// SampleFromComponents converts an evaluated sample into its YAML form.
func SampleFromComponents(uri string, components metrics.Components) SampleScore {
	return SampleScore{
		URI:           uri,
		CpWER:         components[metrics.MetricName],
		Length:        components[metrics.ComponentLength],
		Substitutions: components[metrics.ComponentSubstitutions],
		Deletions:     components[metrics.ComponentDeletions],
		Insertions:    components[metrics.ComponentInsertions],
	}
}

// CorpusFromTotals converts the accumulated component totals into the
// corpus section.
func CorpusFromTotals(totals metrics.Components, samples, failures int) CorpusScore {
	return CorpusScore{
		CpWER:         metrics.ComputeMetric(totals),
		Length:        totals[metrics.ComponentLength],
		Substitutions: totals[metrics.ComponentSubstitutions],
		Deletions:     totals[metrics.ComponentDeletions],
		Insertions:    totals[metrics.ComponentInsertions],
		Samples:       samples,
		Failures:      failures,
	}
}

// Save writes run results to a timestamped YAML file in the evals/
// directory and returns the path written.
func Save(run *RunResults) (string, error) {
	if err := os.MkdirAll("evals", 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if run.Config.Timestamp == "" {
		run.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	filename := fmt.Sprintf("evals/cpwer-%s.yaml", run.Config.Timestamp)

	data, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}
	return absPath, nil
}

// Load reads run results back from a YAML file written by Save.
func Load(path string) (*RunResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var run RunResults
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}

	return &run, nil
}
