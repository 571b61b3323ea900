package outbound

import (
	"context"
	"errors"

	"testskel/internal/domain/valueobject"
)

// ErrParseFailed is returned when source text cannot be turned into a declaration tree.
var ErrParseFailed = errors.New("source could not be parsed")

// SourceParser converts raw source text into a declaration tree.
type SourceParser interface {
	// Parse returns the declarations of one compilation unit. Malformed input yields an error
	// wrapping ErrParseFailed.
	Parse(ctx context.Context, source []byte) (*valueobject.DeclarationTree, error)
}
