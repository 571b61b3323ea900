package outbound

import "testskel/internal/domain/valueobject"

// CodePrinter renders a compilation unit as formatted source text.
type CodePrinter interface {
	// Print fails for syntax nodes it cannot render.
	Print(unit *valueobject.CompilationUnit) (string, error)
}
