// Package pipeline runs the read, generate and write stages over a stream of input paths.
// Each stage has its own concurrency cap and the stages are connected by bounded channels,
// so a slow stage throttles the ones before it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"testskel/internal/application/common/logging"
	"testskel/internal/application/common/slogger"
	"testskel/internal/port/inbound"
	"testskel/internal/port/outbound"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline wires the three stages. It is stateless between runs and may start several runs
// concurrently.
type Pipeline struct {
	reader    outbound.FileReader
	generator inbound.TestGenerator
	writer    outbound.FileWriter
	cfg       Config
	metrics   *Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records stage activity on m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New validates the configuration and builds a pipeline.
func New(
	reader outbound.FileReader,
	generator inbound.TestGenerator,
	writer outbound.FileWriter,
	cfg Config,
	opts ...Option,
) (*Pipeline, error) {
	if reader == nil || generator == nil || writer == nil {
		return nil, errors.New("pipeline requires a reader, a generator and a writer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		reader:    reader,
		generator: generator,
		writer:    writer,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run submits every path, closes the input and waits for the stages to drain. In fail-fast
// mode submission stops at the first failure.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	run := p.Start(ctx)
	for _, path := range paths {
		if err := run.Submit(path); err != nil {
			break
		}
	}
	run.Close()
	return run.Wait()
}

// Run is one execution of the pipeline fed by Submit. Close must be called once all paths
// have been submitted, otherwise Wait never returns.
type Run struct {
	p         *Pipeline
	id        uuid.UUID
	startedAt time.Time

	ctx    context.Context
	cancel context.CancelCauseFunc
	// logCtx carries the correlation id and outlives cancellation of ctx.
	logCtx context.Context

	mu     sync.Mutex
	closed bool
	items  []*item
	input  chan *item

	errs errorCollector

	done   chan struct{}
	result *Result
	err    error
}

// Start launches the stages and returns the run handle.
func (p *Pipeline) Start(ctx context.Context) *Run {
	id := uuid.New()
	ctx = logging.WithCorrelationID(ctx, id.String())
	runCtx, cancel := context.WithCancelCause(ctx)

	r := &Run{
		p:         p,
		id:        id,
		startedAt: time.Now(),
		ctx:       runCtx,
		cancel:    cancel,
		logCtx:    context.WithoutCancel(ctx),
		input:     make(chan *item, p.cfg.ReadConcurrency),
		done:      make(chan struct{}),
	}

	generateIn := make(chan *item, p.cfg.GenerateConcurrency)
	writeIn := make(chan *item, p.cfg.WriteConcurrency)

	go r.stage(ReadStage, p.cfg.ReadConcurrency, r.input, generateIn, r.read)
	go r.stage(GenerateStage, p.cfg.GenerateConcurrency, generateIn, writeIn, r.generate)
	go func() {
		r.stage(WriteStage, p.cfg.WriteConcurrency, writeIn, nil, r.write)
		r.finish()
	}()

	slogger.Info(r.logCtx, "Pipeline run started", slogger.Fields{
		"run_id":               id.String(),
		"read_concurrency":     p.cfg.ReadConcurrency,
		"generate_concurrency": p.cfg.GenerateConcurrency,
		"write_concurrency":    p.cfg.WriteConcurrency,
		"fail_fast":            p.cfg.FailFast,
	})
	return r
}

// ID returns the run identifier, also used as the log correlation id.
func (r *Run) ID() uuid.UUID {
	return r.id
}

// Submit queues a path. It blocks while the read stage is saturated and fails once the run
// is closed or aborted.
func (r *Run) Submit(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRunClosed
	}
	if r.ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrRunAborted, context.Cause(r.ctx))
	}

	it := &item{path: path, state: StatePending}
	select {
	case r.input <- it:
		r.items = append(r.items, it)
		return nil
	case <-r.ctx.Done():
		return fmt.Errorf("%w: %w", ErrRunAborted, context.Cause(r.ctx))
	}
}

// Close ends the input. Items already submitted are still processed.
func (r *Run) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.input)
}

// Wait blocks until every stage has drained and returns the run result. In fail-fast mode
// the error is the first item failure; otherwise it combines all item failures.
func (r *Run) Wait() (*Result, error) {
	<-r.done
	return r.result, r.err
}

type stageFunc func(ctx context.Context, it *item) error

// stage dispatches items from in to at most limit concurrent workers. Once the run is
// canceled the remaining items are drained without processing. out is closed when the
// stage is done, which ends the next stage in turn.
func (r *Run) stage(stage Stage, limit int, in <-chan *item, out chan<- *item, fn stageFunc) {
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for it := range in {
		if r.ctx.Err() != nil {
			r.skip(stage, it)
			continue
		}
		g.Go(func() error {
			r.process(stage, it, out, fn)
			return nil
		})
	}
	_ = g.Wait()

	if out != nil {
		close(out)
	}
}

func (r *Run) process(stage Stage, it *item, out chan<- *item, fn stageFunc) {
	r.p.metrics.stageStarted(r.logCtx, stage)
	start := time.Now()

	err := fn(r.ctx, it)

	d := time.Since(start)
	it.duration += d
	if err != nil {
		r.fail(stage, it, err)
	}
	r.p.metrics.stageFinished(r.logCtx, stage, it.state, d)

	if out != nil && err == nil && !it.state.IsTerminal() {
		out <- it
	}
}

func (r *Run) read(ctx context.Context, it *item) error {
	file, err := r.p.reader.ReadFile(ctx, it.path)
	if err != nil {
		return err
	}
	it.fileName = file.Name
	it.content = file.Content
	it.state = StateRead
	it.readOK = true
	return nil
}

func (r *Run) generate(ctx context.Context, it *item) error {
	text, err := r.p.generator.Generate(inbound.WithSourcePath(ctx, it.path), it.content)
	if err != nil {
		return err
	}
	it.generated = text
	it.content = nil
	it.state = StateGenerated
	it.generatedOK = true
	return nil
}

func (r *Run) write(ctx context.Context, it *item) error {
	if it.generated == "" {
		it.state = StateDropped
		slogger.Debug(r.logCtx, "Nothing generated, file dropped", slogger.Fields{"path": it.path})
		return nil
	}

	path, err := r.p.writer.WriteFile(ctx, outbound.GeneratedFile{
		Name:    it.fileName,
		Path:    it.path,
		Content: it.generated,
	})
	if err != nil {
		return err
	}
	it.outputPath = path
	it.generated = ""
	it.state = StateWritten
	return nil
}

// fail records an item failure. Errors caused by the run's own cancellation are not
// failures of the item: it is marked as not processed instead.
func (r *Run) fail(stage Stage, it *item, err error) {
	if r.ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		r.skip(stage, it)
		return
	}

	stageErr := &StageError{Stage: stage, Path: it.path, Err: err}
	it.state = StateFailed
	it.err = stageErr

	first := r.errs.add(stageErr)
	slogger.ErrorWithError(r.logCtx, err, "Pipeline item failed", slogger.Fields{
		"run_id": r.id.String(),
		"stage":  string(stage),
		"path":   it.path,
	})

	if first && r.p.cfg.FailFast {
		r.cancel(stageErr)
		slogger.Warn(r.logCtx, "Pipeline run aborted after first failure", slogger.Fields{
			"run_id": r.id.String(),
			"stage":  string(stage),
			"path":   it.path,
		})
	}
}

func (r *Run) skip(stage Stage, it *item) {
	it.err = &StageError{
		Stage: stage,
		Path:  it.path,
		Err:   fmt.Errorf("%w: %w", ErrNotProcessed, context.Cause(r.ctx)),
	}
}

func (r *Run) finish() {
	defer close(r.done)

	r.mu.Lock()
	items := r.items
	r.mu.Unlock()

	res := &Result{
		RunID:     r.id,
		Items:     make([]ItemResult, 0, len(items)),
		StartedAt: r.startedAt,
		Duration:  time.Since(r.startedAt),
	}
	for _, it := range items {
		res.Items = append(res.Items, it.result())
		if it.readOK {
			res.Read++
		}
		if it.generatedOK {
			res.Generated++
		}
		switch {
		case it.state == StateWritten:
			res.Written++
		case it.state == StateDropped:
			res.Dropped++
		case it.state == StateFailed:
			res.Failed++
		case it.err != nil:
			res.Skipped++
		}
	}

	var err error
	if r.p.cfg.FailFast {
		err = r.errs.firstError()
	} else {
		err = r.errs.combined()
	}
	if err == nil && r.ctx.Err() != nil {
		err = fmt.Errorf("pipeline run canceled: %w", context.Cause(r.ctx))
	}

	r.cancel(nil)
	r.result = res
	r.err = err

	r.p.metrics.runFinished(r.logCtx, err)
	slogger.Info(r.logCtx, "Pipeline run finished", slogger.Fields{
		"run_id":    r.id.String(),
		"items":     len(items),
		"read":      res.Read,
		"generated": res.Generated,
		"written":   res.Written,
		"dropped":   res.Dropped,
		"failed":    res.Failed,
		"skipped":   res.Skipped,
		"duration":  res.Duration.String(),
	})
}
