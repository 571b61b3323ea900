package inbound

import "context"

// TestGenerator turns the text of one C# source file into the text of its test skeleton file.
type TestGenerator interface {
	// Generate returns the generated file content, or "" when the source holds nothing to
	// test (no namespace, no public methods, or unparseable input).
	Generate(ctx context.Context, source []byte) (string, error)
}

type sourcePathKey struct{}

// WithSourcePath attaches the path of the file being generated, for log context.
func WithSourcePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, sourcePathKey{}, path)
}

// SourcePath returns the path set by WithSourcePath, or "".
func SourcePath(ctx context.Context) string {
	path, _ := ctx.Value(sourcePathKey{}).(string)
	return path
}
