package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"testskel/internal/adapter/outbound/filesystem"
	"testskel/internal/adapter/outbound/printer"
	"testskel/internal/adapter/outbound/report"
	"testskel/internal/adapter/outbound/treesitter"
	"testskel/internal/application/common/slogger"
	"testskel/internal/application/service"
	"testskel/internal/application/worker/pipeline"
	"testskel/internal/config"
	"testskel/internal/version"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// errNoSources is returned when the inputs expand to no file.
var errNoSources = errors.New("no source files found")

// newGenerateCmd implements: testskel generate [paths...] [--output dir] [--report file.yaml].
func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Generate test skeletons for C# files and directories",
		Long: `Generate reads every C# file given on the command line, expands directories
with the input pattern and writes one test skeleton per file into the output
directory, under the same file name. Files without public methods produce no
output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := runGenerate(ctx, a.cfg, afero.NewOsFs(), args)
			if res != nil {
				printSummary(cmd.OutOrStdout(), res)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Directory receiving the generated tests")
	flags.Int("read-concurrency", 0, "Maximum concurrent file reads")
	flags.Int("generate-concurrency", 0, "Maximum concurrent generations")
	flags.Int("write-concurrency", 0, "Maximum concurrent file writes")
	flags.Bool("fail-fast", true, "Abort the run on the first failed file")
	flags.String("pattern", "", "File name pattern used inside directories")
	flags.BoolP("recursive", "r", false, "Descend into subdirectories")
	flags.StringSlice("exclude", nil, "Gitignore-style patterns skipped inside directories")
	flags.String("report", "", "Write a YAML run report to this file")
	flags.String("metrics", "", "Metrics export: log, stdout or none")

	for key, name := range map[string]string{
		"output.dir":                    "output",
		"pipeline.read_concurrency":     "read-concurrency",
		"pipeline.generate_concurrency": "generate-concurrency",
		"pipeline.write_concurrency":    "write-concurrency",
		"pipeline.fail_fast":            "fail-fast",
		"input.pattern":                 "pattern",
		"input.recursive":               "recursive",
		"input.exclude":                 "exclude",
		"report.path":                   "report",
		"metrics.export":                "metrics",
	} {
		a.bindFlag(key, flags.Lookup(name))
	}

	return cmd
}

// runGenerate scans the inputs, runs the pipeline and writes the optional report. The
// result is returned even when the run fails.
func runGenerate(ctx context.Context, cfg *config.Config, fs afero.Fs, inputs []string) (*pipeline.Result, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}

	exclude, err := filesystem.NewExcludeMatcher(cfg.Input.Exclude)
	if err != nil {
		return nil, err
	}
	scanner, err := filesystem.NewScanner(fs,
		filesystem.WithPattern(cfg.Input.Pattern),
		filesystem.WithRecursive(cfg.Input.Recursive),
		filesystem.WithExclude(exclude),
	)
	if err != nil {
		return nil, err
	}
	paths, err := scanner.Scan(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %v", errNoSources, inputs)
	}

	info := version.Get()
	provider, metricReader, err := newMeterProvider(cfg.Metrics.Export, os.Stderr, info)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slogger.ErrorWithError(context.WithoutCancel(ctx), err, "Failed to flush metrics", nil)
		}
	}()

	metrics, err := pipeline.NewMetricsWithProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("create pipeline metrics: %w", err)
	}

	parser, err := treesitter.NewObservableParser(treesitter.NewCSharpParser(), treesitter.CSharpLanguage, provider)
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}
	generator, err := service.NewTestGeneratorService(parser, printer.NewCSharpPrinter())
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(
		filesystem.NewReader(fs, filesystem.DefaultMaxFileSize),
		generator,
		filesystem.NewWriter(fs, cfg.Output.Dir),
		pipeline.Config{
			ReadConcurrency:     cfg.Pipeline.ReadConcurrency,
			GenerateConcurrency: cfg.Pipeline.GenerateConcurrency,
			WriteConcurrency:    cfg.Pipeline.WriteConcurrency,
			FailFast:            cfg.Pipeline.FailFast,
		},
		pipeline.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	slogger.Info(ctx, "Generating test skeletons", slogger.Fields{
		"files":      len(paths),
		"output_dir": cfg.Output.Dir,
		"version":    info.Version,
	})

	res, runErr := p.Run(ctx, paths)

	if cfg.Metrics.Export != config.MetricsExportNone {
		logMetrics(context.WithoutCancel(ctx), metricReader)
	}

	if cfg.Report.Path != "" {
		if err := report.Write(fs, cfg.Report.Path, report.FromResult(res, runErr)); err != nil {
			runErr = multierr.Append(runErr, err)
		} else {
			slogger.Info(ctx, "Wrote run report", slogger.Fields{"path": cfg.Report.Path})
		}
	}

	return res, runErr
}

// printSummary writes the per-state totals and the failed items.
func printSummary(w io.Writer, res *pipeline.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Files\t%d\n", res.Total())
	fmt.Fprintf(tw, "Written\t%d\n", res.Written)
	fmt.Fprintf(tw, "Dropped\t%d\n", res.Dropped)
	fmt.Fprintf(tw, "Failed\t%d\n", res.Failed)
	if res.Skipped > 0 {
		fmt.Fprintf(tw, "Skipped\t%d\n", res.Skipped)
	}
	fmt.Fprintf(tw, "Duration\t%s\n", res.Duration.Round(time.Millisecond))
	_ = tw.Flush()

	var failed []pipeline.ItemResult
	for _, it := range res.Items {
		if it.State == pipeline.StateFailed {
			failed = append(failed, it)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Path < failed[j].Path })
	for _, it := range failed {
		fmt.Fprintf(w, "FAILED %s: %v\n", it.Path, it.Err)
	}
}
