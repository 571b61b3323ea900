package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"testskel/internal/application/common/slogger"
	"testskel/internal/port/outbound"

	"github.com/spf13/afero"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

var (
	// ErrEmptyFileName is returned for a generated file without a name.
	ErrEmptyFileName = errors.New("generated file has no name")
	// ErrDuplicateOutput is returned when two sources map to the same output file.
	ErrDuplicateOutput = errors.New("output file already written by another source")
)

// Writer implements outbound.FileWriter. Every file lands in the output directory under its
// own base name. A file left by an earlier run is replaced, but within one Writer each
// output name is written at most once.
type Writer struct {
	fs        afero.Fs
	outputDir string

	mu      sync.Mutex
	written map[string]string // output name -> source path
}

var _ outbound.FileWriter = (*Writer)(nil)

// NewWriter creates a writer into outputDir. A nil fs writes to the operating system.
func NewWriter(fs afero.Fs, outputDir string) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs, outputDir: outputDir, written: make(map[string]string)}
}

// OutputDir returns the target directory.
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// WriteFile stores the file and returns its path. The output directory is created on demand.
// Errors wrap outbound.ErrWriteFailed.
func (w *Writer) WriteFile(ctx context.Context, file outbound.GeneratedFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", outbound.ErrWriteFailed, file.Name, err)
	}

	name := filepath.Base(file.Name)
	if file.Name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %w", outbound.ErrWriteFailed, ErrEmptyFileName)
	}

	if err := w.claim(name, file.Path); err != nil {
		return "", err
	}

	if err := w.fs.MkdirAll(w.outputDir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: create output directory: %w", outbound.ErrWriteFailed, err)
	}

	target := filepath.Join(w.outputDir, name)
	if err := afero.WriteFile(w.fs, target, []byte(file.Content), filePerm); err != nil {
		return "", fmt.Errorf("%w: %w", outbound.ErrWriteFailed, err)
	}

	slogger.Debug(ctx, "Test file written", slogger.Fields{
		"path":  target,
		"bytes": len(file.Content),
	})
	return target, nil
}

func (w *Writer) claim(name, source string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written == nil {
		w.written = make(map[string]string)
	}
	if first, ok := w.written[name]; ok {
		return fmt.Errorf("%w: %w: %s from %s and %s", outbound.ErrWriteFailed, ErrDuplicateOutput, name, first, source)
	}
	w.written[name] = source
	return nil
}
