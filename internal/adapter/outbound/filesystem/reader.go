// Package filesystem implements the file ports on top of an afero filesystem, so the same
// adapters serve the real disk and in-memory trees.
package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"testskel/internal/application/common/slogger"
	"testskel/internal/port/outbound"

	"github.com/spf13/afero"
)

// DefaultMaxFileSize caps the size of a single source file.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Reader implements outbound.FileReader.
type Reader struct {
	fs          afero.Fs
	maxFileSize int64
}

var _ outbound.FileReader = (*Reader)(nil)

// NewReader creates a reader over fs. A nil fs reads from the operating system.
func NewReader(fs afero.Fs, maxFileSize int64) *Reader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Reader{fs: fs, maxFileSize: maxFileSize}
}

// ReadFile loads the whole file. Errors wrap outbound.ErrReadFailed.
func (r *Reader) ReadFile(ctx context.Context, path string) (outbound.SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return outbound.SourceFile{}, fmt.Errorf("%w: %s: %w", outbound.ErrReadFailed, path, err)
	}

	start := time.Now()
	info, err := r.fs.Stat(path)
	if err != nil {
		return outbound.SourceFile{}, fmt.Errorf("%w: %w", outbound.ErrReadFailed, err)
	}
	if info.IsDir() {
		return outbound.SourceFile{}, fmt.Errorf("%w: %s is a directory", outbound.ErrReadFailed, path)
	}
	if info.Size() > r.maxFileSize {
		return outbound.SourceFile{}, fmt.Errorf("%w: %s: size %d exceeds limit %d",
			outbound.ErrReadFailed, path, info.Size(), r.maxFileSize)
	}

	content, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return outbound.SourceFile{}, fmt.Errorf("%w: %w", outbound.ErrReadFailed, err)
	}

	slogger.Debug(ctx, "Source file read", slogger.Fields{
		"path":     path,
		"bytes":    len(content),
		"duration": time.Since(start).String(),
	})

	return outbound.SourceFile{
		Name:    filepath.Base(path),
		Path:    path,
		Content: content,
	}, nil
}
