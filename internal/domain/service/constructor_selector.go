package service

import (
	"strings"

	"testskel/internal/domain/valueobject"
)

// FakeablePredicate decides whether a constructor dependency should be replaced by a mock
// double. It only sees the parameter name and the type name as written in source.
type FakeablePredicate func(paramName, typeName string) bool

// IsInterfaceLike is the default FakeablePredicate: the lower-cased type name must equal
// "i" followed by the lower-cased parameter name ("ILogger logger"). It is a naming
// convention, not a type-system query.
func IsInterfaceLike(paramName, typeName string) bool {
	if paramName == "" || typeName == "" {
		return false
	}
	return strings.ToLower(typeName) == "i"+strings.ToLower(paramName)
}

// ConstructorSelector picks the constructor used to build the fixture under test.
type ConstructorSelector struct {
	isFakeable FakeablePredicate
}

// SelectorOption configures a ConstructorSelector.
type SelectorOption func(*ConstructorSelector)

// WithFakeablePredicate replaces the default naming-convention predicate.
func WithFakeablePredicate(p FakeablePredicate) SelectorOption {
	return func(s *ConstructorSelector) {
		if p != nil {
			s.isFakeable = p
		}
	}
}

// NewConstructorSelector creates a selector using IsInterfaceLike unless overridden.
func NewConstructorSelector(opts ...SelectorOption) *ConstructorSelector {
	s := &ConstructorSelector{isFakeable: IsInterfaceLike}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsFakeable applies the configured predicate to a parameter.
func (s *ConstructorSelector) IsFakeable(p valueobject.Parameter) bool {
	return s.isFakeable(p.Name, p.TypeName)
}

// Predicate returns the configured predicate.
func (s *ConstructorSelector) Predicate() FakeablePredicate {
	return s.isFakeable
}

// FakeableCount counts the parameters the predicate accepts.
func (s *ConstructorSelector) FakeableCount(params []valueobject.Parameter) int {
	n := 0
	for _, p := range params {
		if s.IsFakeable(p) {
			n++
		}
	}
	return n
}

// Select returns the parameter list of the public constructor with the most fakeable
// parameters. Ties keep the earliest constructor. Non-public constructors are ignored; with
// none left the class is treated as having an implicit parameterless constructor and an
// empty list is returned.
func (s *ConstructorSelector) Select(constructors []*valueobject.Declaration) []valueobject.Parameter {
	var best *valueobject.Declaration
	bestScore := -1
	for _, ctor := range constructors {
		if ctor == nil || ctor.Kind != valueobject.ConstructorDeclaration || !ctor.IsPublic() {
			continue
		}
		if score := s.FakeableCount(ctor.Parameters); score > bestScore {
			best, bestScore = ctor, score
		}
	}
	if best == nil {
		return []valueobject.Parameter{}
	}
	out := make([]valueobject.Parameter, len(best.Parameters))
	copy(out, best.Parameters)
	return out
}
