package outbound

import (
	"context"
	"errors"
)

var (
	// ErrReadFailed wraps failures to read an input file.
	ErrReadFailed = errors.New("read failed")
	// ErrWriteFailed wraps failures to write an output file.
	ErrWriteFailed = errors.New("write failed")
)

// SourceFile is an input file with its full content.
type SourceFile struct {
	// Name is the base file name, reused as the output file name.
	Name    string
	Path    string
	Content []byte
}

// GeneratedFile is the generator output for one input file.
type GeneratedFile struct {
	Name    string
	Path    string
	Content string
}

// IsEmpty reports whether there is nothing to write.
func (g GeneratedFile) IsEmpty() bool {
	return g.Content == ""
}

// FileReader loads input files.
type FileReader interface {
	ReadFile(ctx context.Context, path string) (SourceFile, error)
}

// FileWriter stores generated files and returns the written location.
type FileWriter interface {
	WriteFile(ctx context.Context, file GeneratedFile) (string, error)
}

// SourceScanner expands input arguments (files or directories) into source file paths.
type SourceScanner interface {
	Scan(ctx context.Context, inputs []string) ([]string, error)
}
