package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

var (
	// ErrInvalidConcurrency is returned by New for a stage cap below one.
	ErrInvalidConcurrency = errors.New("invalid stage concurrency")
	// ErrRunClosed is returned by Submit after Close.
	ErrRunClosed = errors.New("pipeline run closed")
	// ErrRunAborted is returned by Submit once a fail-fast run has been canceled.
	ErrRunAborted = errors.New("pipeline run aborted")
	// ErrNotProcessed marks items skipped because the run was canceled before they were handled.
	ErrNotProcessed = errors.New("item not processed")
)

// StageError ties an item failure to the stage and path where it happened.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// errorCollector keeps the first error and the combination of all of them.
type errorCollector struct {
	mu    sync.Mutex
	first error
	all   error
	count int
}

func (c *errorCollector) add(err error) (first bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.all = multierr.Append(c.all, err)
	if c.first == nil {
		c.first = err
		return true
	}
	return false
}

func (c *errorCollector) firstError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.first
}

func (c *errorCollector) combined() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.all
}
