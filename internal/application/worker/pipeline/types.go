package pipeline

import (
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// Stage identifies one of the three pipeline stages.
type Stage string

const (
	ReadStage     Stage = "read"
	GenerateStage Stage = "generate"
	WriteStage    Stage = "write"
)

// ItemState is the lifecycle state of one input file.
type ItemState int

const (
	StatePending ItemState = iota
	StateRead
	StateGenerated
	StateWritten
	StateDropped
	StateFailed
)

var itemStateNames = map[ItemState]string{
	StatePending:   "pending",
	StateRead:      "read",
	StateGenerated: "generated",
	StateWritten:   "written",
	StateDropped:   "dropped",
	StateFailed:    "failed",
}

func (s ItemState) String() string {
	if name, ok := itemStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsTerminal reports whether the item will not move to another state.
func (s ItemState) IsTerminal() bool {
	return s == StateWritten || s == StateDropped || s == StateFailed
}

// Default stage caps.
const (
	DefaultReadConcurrency  = 4
	DefaultWriteConcurrency = 4
)

// Config holds the per-stage concurrency caps and the failure policy.
type Config struct {
	ReadConcurrency     int
	GenerateConcurrency int
	WriteConcurrency    int
	// FailFast cancels the run on the first item error. Otherwise failures are recorded per
	// item and the remaining items are still processed.
	FailFast bool
}

// DefaultConfig returns fail-fast caps sized for a local disk and the available CPUs.
func DefaultConfig() Config {
	return Config{
		ReadConcurrency:     DefaultReadConcurrency,
		GenerateConcurrency: runtime.NumCPU(),
		WriteConcurrency:    DefaultWriteConcurrency,
		FailFast:            true,
	}
}

// Validate rejects caps below one.
func (c Config) Validate() error {
	caps := []struct {
		stage Stage
		value int
	}{
		{ReadStage, c.ReadConcurrency},
		{GenerateStage, c.GenerateConcurrency},
		{WriteStage, c.WriteConcurrency},
	}
	for _, cp := range caps {
		if cp.value < 1 {
			return fmt.Errorf("%w: %s stage cap is %d", ErrInvalidConcurrency, cp.stage, cp.value)
		}
	}
	return nil
}

// ItemResult is the outcome for one input path.
type ItemResult struct {
	Path       string
	FileName   string
	OutputPath string
	State      ItemState
	Err        error
	Duration   time.Duration
}

// Result summarizes a finished run.
type Result struct {
	RunID     uuid.UUID
	Items     []ItemResult
	Read      int
	Generated int
	Written   int
	Dropped   int
	Failed    int
	// Skipped counts items left unfinished because the run was canceled.
	Skipped   int
	StartedAt time.Time
	Duration  time.Duration
}

// Total is the number of submitted items.
func (r *Result) Total() int {
	return len(r.Items)
}

// item travels through the stages. Each stage owns it exclusively while processing it.
type item struct {
	path       string
	fileName   string
	content    []byte
	generated  string
	outputPath string
	state      ItemState
	err        error
	duration   time.Duration

	readOK      bool
	generatedOK bool
}

func (it *item) result() ItemResult {
	return ItemResult{
		Path:       it.path,
		FileName:   it.fileName,
		OutputPath: it.outputPath,
		State:      it.state,
		Err:        it.err,
		Duration:   it.duration,
	}
}
