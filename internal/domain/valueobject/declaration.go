package valueobject

import "strings"

// DeclarationKind identifies the kind of a source declaration.
type DeclarationKind int

const (
	NamespaceDeclaration DeclarationKind = iota
	ClassDeclaration
	ConstructorDeclaration
	MethodDeclaration
)

// String returns the lower-case name of the declaration kind.
func (k DeclarationKind) String() string {
	switch k {
	case NamespaceDeclaration:
		return "namespace"
	case ClassDeclaration:
		return "class"
	case ConstructorDeclaration:
		return "constructor"
	case MethodDeclaration:
		return "method"
	default:
		return "unknown"
	}
}

// VoidType is the return type name of methods that produce no value.
const VoidType = "void"

// PublicModifier is the visibility modifier that makes a member visible to the generator.
const PublicModifier = "public"

// Parameter is a declared parameter. TypeName is the type exactly as written in source.
type Parameter struct {
	Name     string `json:"name"      yaml:"name"`
	TypeName string `json:"type_name" yaml:"type_name"`
}

// Declaration is a node of the declaration tree produced by a source parser.
type Declaration struct {
	Kind       DeclarationKind
	Name       string
	Modifiers  []string
	Parameters []Parameter
	ReturnType string
	Children   []*Declaration
}

// IsPublic reports whether the declaration carries the public modifier.
func (d *Declaration) IsPublic() bool {
	for _, m := range d.Modifiers {
		if strings.EqualFold(m, PublicModifier) {
			return true
		}
	}
	return false
}

// ChildrenOfKind returns the direct children of the given kind in document order.
func (d *Declaration) ChildrenOfKind(kind DeclarationKind) []*Declaration {
	var out []*Declaration
	for _, c := range d.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// DeclarationTree is the parser output for one source file.
type DeclarationTree struct {
	// Usings holds the using directives of the compilation unit, e.g. "System.Linq".
	Usings []string
	Roots  []*Declaration
}

// IsEmpty reports whether the tree has no declarations at all.
func (t *DeclarationTree) IsEmpty() bool {
	return t == nil || len(t.Roots) == 0
}

// Walk visits every declaration in document order (pre-order). The enclosing chain, outermost
// first, is passed alongside each node. Returning false from visit skips the node's children.
func (t *DeclarationTree) Walk(visit func(node *Declaration, ancestors []*Declaration) bool) {
	if t == nil {
		return
	}
	var walk func(nodes []*Declaration, ancestors []*Declaration)
	walk = func(nodes []*Declaration, ancestors []*Declaration) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if !visit(n, ancestors) {
				continue
			}
			walk(n.Children, append(ancestors[:len(ancestors):len(ancestors)], n))
		}
	}
	walk(t.Roots, nil)
}
