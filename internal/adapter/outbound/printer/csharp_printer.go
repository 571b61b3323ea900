// Package printer renders the generated test syntax model as C# source text.
package printer

import (
	"errors"
	"fmt"
	"strings"

	"testskel/internal/domain/valueobject"
)

const defaultIndent = "    "

// CSharpPrinter implements outbound.CodePrinter with Allman braces and a fixed indent.
type CSharpPrinter struct {
	indent  string
	newline string
}

// Option configures a CSharpPrinter.
type Option func(*CSharpPrinter)

// WithIndent overrides the indentation unit.
func WithIndent(indent string) Option {
	return func(p *CSharpPrinter) {
		if indent != "" {
			p.indent = indent
		}
	}
}

// WithCRLF switches line endings to "\r\n".
func WithCRLF() Option {
	return func(p *CSharpPrinter) {
		p.newline = "\r\n"
	}
}

// NewCSharpPrinter creates a printer using four-space indentation and "\n" line endings.
func NewCSharpPrinter(opts ...Option) *CSharpPrinter {
	p := &CSharpPrinter{indent: defaultIndent, newline: "\n"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ErrUnsupportedNode is returned for a syntax node the printer cannot render.
var ErrUnsupportedNode = errors.New("unsupported syntax node")

// Print renders the unit. An empty unit renders as the empty string.
func (p *CSharpPrinter) Print(unit *valueobject.CompilationUnit) (string, error) {
	if unit.IsEmpty() {
		return "", nil
	}

	w := &writer{p: p}
	for _, u := range unit.Usings {
		w.line(0, "using "+u+";")
	}
	for _, ns := range unit.Namespaces {
		w.blank()
		if err := p.printNamespace(w, ns); err != nil {
			return "", fmt.Errorf("print namespace %s: %w", ns.Name, err)
		}
	}
	return w.String(), nil
}

func (p *CSharpPrinter) printNamespace(w *writer, ns valueobject.NamespaceDecl) error {
	w.line(0, "namespace "+ns.Name)
	w.line(0, "{")
	for i, class := range ns.Classes {
		if i > 0 {
			w.blank()
		}
		if err := p.printClass(w, 1, class); err != nil {
			return fmt.Errorf("class %s: %w", class.Name, err)
		}
	}
	w.line(0, "}")
	return nil
}

func (p *CSharpPrinter) printClass(w *writer, depth int, class valueobject.ClassDecl) error {
	w.line(depth, "public class "+class.Name)
	w.line(depth, "{")

	var prev valueobject.Member
	for _, m := range class.Members {
		_, isField := m.(*valueobject.FieldDecl)
		_, prevField := prev.(*valueobject.FieldDecl)
		if prev != nil && (!isField || !prevField) {
			w.blank()
		}
		switch member := m.(type) {
		case *valueobject.FieldDecl:
			w.line(depth+1, "private "+member.Type+" "+member.Name+";")
		case *valueobject.ConstructorDecl:
			w.line(depth+1, "public "+member.Name+"()")
			if err := p.printBlock(w, depth+1, member.Body); err != nil {
				return err
			}
		case *valueobject.MethodDecl:
			for _, attr := range member.Attributes {
				w.line(depth+1, "["+attr+"]")
			}
			w.line(depth+1, "public "+member.ReturnType+" "+member.Name+"()")
			if err := p.printBlock(w, depth+1, member.Body); err != nil {
				return fmt.Errorf("method %s: %w", member.Name, err)
			}
		default:
			return fmt.Errorf("%w: member %T", ErrUnsupportedNode, m)
		}
		prev = m
	}

	w.line(depth, "}")
	return nil
}

func (p *CSharpPrinter) printBlock(w *writer, depth int, body []valueobject.Statement) error {
	w.line(depth, "{")
	for _, stmt := range body {
		text, err := statement(stmt)
		if err != nil {
			return err
		}
		w.line(depth+1, text)
	}
	w.line(depth, "}")
	return nil
}

func statement(s valueobject.Statement) (string, error) {
	switch st := s.(type) {
	case *valueobject.LocalDecl:
		init, err := expression(st.Init)
		if err != nil {
			return "", err
		}
		return st.Type + " " + st.Name + " = " + init + ";", nil
	case *valueobject.ExprStmt:
		expr, err := expression(st.Expr)
		if err != nil {
			return "", err
		}
		return expr + ";", nil
	default:
		return "", fmt.Errorf("%w: statement %T", ErrUnsupportedNode, s)
	}
}

func expression(e valueobject.Expression) (string, error) {
	switch ex := e.(type) {
	case *valueobject.Ident:
		return ex.Name, nil
	case *valueobject.StringLiteral:
		return quote(ex.Value), nil
	case *valueobject.NumberLiteral:
		return ex.Text, nil
	case *valueobject.DefaultLiteral:
		return "default", nil
	case *valueobject.NewObject:
		args, err := arguments(ex.Args)
		if err != nil {
			return "", err
		}
		return "new " + ex.Type + "(" + args + ")", nil
	case *valueobject.NewMock:
		return "new Mock<" + ex.Type + ">()", nil
	case *valueobject.Invocation:
		args, err := arguments(ex.Args)
		if err != nil {
			return "", err
		}
		return ex.Target + "." + ex.Method + "(" + args + ")", nil
	default:
		return "", fmt.Errorf("%w: expression %T", ErrUnsupportedNode, e)
	}
}

func arguments(args []valueobject.Expression) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		text, err := expression(a)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quote(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

type writer struct {
	p  *CSharpPrinter
	sb strings.Builder
}

func (w *writer) line(depth int, text string) {
	w.sb.WriteString(strings.Repeat(w.p.indent, depth))
	w.sb.WriteString(text)
	w.sb.WriteString(w.p.newline)
}

func (w *writer) blank() {
	w.sb.WriteString(w.p.newline)
}

func (w *writer) String() string {
	return w.sb.String()
}
