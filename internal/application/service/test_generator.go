// Package service contains the application services that orchestrate the domain logic
// behind the ports.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"testskel/internal/application/common/slogger"
	domainservice "testskel/internal/domain/service"
	"testskel/internal/port/inbound"
	"testskel/internal/port/outbound"
)

// TestGeneratorService implements inbound.TestGenerator: parse, collect, build and print.
// It holds no mutable state and may be called concurrently.
type TestGeneratorService struct {
	parser    outbound.SourceParser
	printer   outbound.CodePrinter
	collector *domainservice.NamespaceClassCollector
	builder   *domainservice.TestSkeletonBuilder
}

var _ inbound.TestGenerator = (*TestGeneratorService)(nil)

// GeneratorOption configures a TestGeneratorService.
type GeneratorOption func(*generatorOptions)

type generatorOptions struct {
	selector *domainservice.ConstructorSelector
}

// WithConstructorSelector sets the selector shared by the collector and the builder.
func WithConstructorSelector(selector *domainservice.ConstructorSelector) GeneratorOption {
	return func(o *generatorOptions) {
		o.selector = selector
	}
}

// NewTestGeneratorService wires the generator. Parser and printer are required.
func NewTestGeneratorService(
	parser outbound.SourceParser,
	printer outbound.CodePrinter,
	opts ...GeneratorOption,
) (*TestGeneratorService, error) {
	if parser == nil {
		return nil, errors.New("source parser is required")
	}
	if printer == nil {
		return nil, errors.New("code printer is required")
	}

	o := &generatorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.selector == nil {
		o.selector = domainservice.NewConstructorSelector()
	}

	return &TestGeneratorService{
		parser:    parser,
		printer:   printer,
		collector: domainservice.NewNamespaceClassCollector(o.selector),
		builder:   domainservice.NewTestSkeletonBuilder(o.selector),
	}, nil
}

// Generate returns the test skeleton for one source file. Unparseable input is not an error:
// it produces "" like any other source without qualifying classes.
func (s *TestGeneratorService) Generate(ctx context.Context, source []byte) (string, error) {
	start := time.Now()

	tree, err := s.parser.Parse(ctx, source)
	if err != nil {
		if errors.Is(err, outbound.ErrParseFailed) {
			slogger.Warn(ctx, "Source skipped: parse failed", slogger.Fields{
				"path":          inbound.SourcePath(ctx),
				"error":         err.Error(),
				"source_length": len(source),
			})
			return "", nil
		}
		return "", fmt.Errorf("parse source: %w", err)
	}

	groups, err := s.collector.Collect(tree)
	if err != nil {
		return "", err
	}

	unit, err := s.builder.BuildCompilationUnit(tree.Usings, groups)
	if err != nil {
		return "", fmt.Errorf("build test skeleton: %w", err)
	}
	if unit.IsEmpty() {
		slogger.Debug(ctx, "Source skipped: no qualifying classes", slogger.Fields{
			"namespaces": len(groups),
		})
		return "", nil
	}

	out, err := s.printer.Print(unit)
	if err != nil {
		return "", fmt.Errorf("print test skeleton: %w", err)
	}

	slogger.Debug(ctx, "Test skeleton generated", slogger.Fields{
		"namespaces":    len(unit.Namespaces),
		"output_length": len(out),
		"duration":      time.Since(start).String(),
	})
	return out, nil
}
