package valueobject

// The types below describe the generated test file. They carry structure only; layout is the
// printer's concern.

// CompilationUnit is a whole generated source file.
type CompilationUnit struct {
	Usings     []string
	Namespaces []NamespaceDecl
}

// IsEmpty reports whether the unit has nothing worth printing.
func (u *CompilationUnit) IsEmpty() bool {
	return u == nil || len(u.Namespaces) == 0
}

// NamespaceDecl is a namespace block.
type NamespaceDecl struct {
	Name    string
	Classes []ClassDecl
}

// ClassDecl is a public class declaration.
type ClassDecl struct {
	Name    string
	Members []Member
}

// Member is a class member: *FieldDecl, *ConstructorDecl or *MethodDecl.
type Member interface {
	memberNode()
}

// FieldDecl is a private field.
type FieldDecl struct {
	Type string
	Name string
}

// ConstructorDecl is a public parameterless constructor.
type ConstructorDecl struct {
	Name string
	Body []Statement
}

// MethodDecl is a public parameterless method.
type MethodDecl struct {
	Name       string
	Attributes []string
	ReturnType string
	Body       []Statement
}

func (*FieldDecl) memberNode()       {}
func (*ConstructorDecl) memberNode() {}
func (*MethodDecl) memberNode()      {}

// Statement is *LocalDecl or *ExprStmt.
type Statement interface {
	statementNode()
}

// LocalDecl declares a local variable. Type "var" requests inference.
type LocalDecl struct {
	Type string
	Name string
	Init Expression
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	Expr Expression
}

func (*LocalDecl) statementNode() {}
func (*ExprStmt) statementNode()  {}

// Expression is one of the expression nodes below.
type Expression interface {
	expressionNode()
}

// Ident references a name.
type Ident struct {
	Name string
}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Value string
}

// NumberLiteral is a numeric literal written verbatim.
type NumberLiteral struct {
	Text string
}

// DefaultLiteral is the language's `default` literal.
type DefaultLiteral struct{}

// NewObject constructs Type with the given arguments.
type NewObject struct {
	Type string
	Args []Expression
}

// NewMock constructs a mock double of Type with no arguments.
type NewMock struct {
	Type string
}

// Invocation calls Target.Method(Args...).
type Invocation struct {
	Target string
	Method string
	Args   []Expression
}

func (*Ident) expressionNode()          {}
func (*StringLiteral) expressionNode()  {}
func (*NumberLiteral) expressionNode()  {}
func (*DefaultLiteral) expressionNode() {}
func (*NewObject) expressionNode()      {}
func (*NewMock) expressionNode()        {}
func (*Invocation) expressionNode()     {}
