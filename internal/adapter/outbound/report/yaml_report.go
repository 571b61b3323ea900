// Package report renders a pipeline run summary as YAML.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"testskel/internal/application/worker/pipeline"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Report is the serialized form of a pipeline.Result.
type Report struct {
	RunID     string       `yaml:"run_id"`
	StartedAt time.Time    `yaml:"started_at"`
	Duration  string       `yaml:"duration"`
	Outcome   string       `yaml:"outcome"`
	Error     string       `yaml:"error,omitempty"`
	Totals    Totals       `yaml:"totals"`
	Items     []ItemReport `yaml:"items"`
}

// Totals mirrors the result counters.
type Totals struct {
	Submitted int `yaml:"submitted"`
	Read      int `yaml:"read"`
	Generated int `yaml:"generated"`
	Written   int `yaml:"written"`
	Dropped   int `yaml:"dropped"`
	Failed    int `yaml:"failed"`
	Skipped   int `yaml:"skipped"`
}

// ItemReport describes one input file.
type ItemReport struct {
	Path     string `yaml:"path"`
	Output   string `yaml:"output,omitempty"`
	State    string `yaml:"state"`
	Error    string `yaml:"error,omitempty"`
	Duration string `yaml:"duration"`
}

// FromResult converts a run result and the run error into a report.
func FromResult(res *pipeline.Result, runErr error) Report {
	r := Report{Outcome: "success"}
	if runErr != nil {
		r.Outcome = "failure"
		r.Error = runErr.Error()
	}
	if res == nil {
		return r
	}

	r.RunID = res.RunID.String()
	r.StartedAt = res.StartedAt.UTC()
	r.Duration = res.Duration.String()
	r.Totals = Totals{
		Submitted: res.Total(),
		Read:      res.Read,
		Generated: res.Generated,
		Written:   res.Written,
		Dropped:   res.Dropped,
		Failed:    res.Failed,
		Skipped:   res.Skipped,
	}
	r.Items = make([]ItemReport, 0, len(res.Items))
	for _, it := range res.Items {
		item := ItemReport{
			Path:     it.Path,
			Output:   it.OutputPath,
			State:    it.State.String(),
			Duration: it.Duration.String(),
		}
		if it.Err != nil {
			item.Error = it.Err.Error()
			if !it.State.IsTerminal() {
				item.State = "skipped"
			}
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// Marshal encodes the report with a two-space indent.
func (r Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores the report at path, creating parent directories.
func Write(fs afero.Fs, path string, r Report) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
