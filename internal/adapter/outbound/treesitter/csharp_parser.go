package treesitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"testskel/internal/application/common/slogger"
	"testskel/internal/domain/valueobject"
	"testskel/internal/port/outbound"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// Node types of the tree-sitter C# grammar that the adapter understands.
const (
	nodeCompilationUnit     = "compilation_unit"
	nodeUsingDirective      = "using_directive"
	nodeNamespace           = "namespace_declaration"
	nodeFileScopedNamespace = "file_scoped_namespace_declaration"
	nodeDeclarationList     = "declaration_list"
	nodeClass               = "class_declaration"
	nodeConstructor         = "constructor_declaration"
	nodeMethod              = "method_declaration"
	nodeParameterList       = "parameter_list"
	nodeParameter           = "parameter"
	nodeModifier            = "modifier"
)

// csharpModifiers lists modifier keywords that some grammar versions expose as bare tokens
// instead of wrapping them in a modifier node.
var csharpModifiers = map[string]struct{}{
	"public": {}, "private": {}, "protected": {}, "internal": {}, "static": {},
	"abstract": {}, "sealed": {}, "virtual": {}, "override": {}, "partial": {},
	"async": {}, "extern": {}, "new": {}, "readonly": {}, "unsafe": {},
}

var (
	// ErrFileTooLarge is returned when the source exceeds the configured size limit.
	ErrFileTooLarge = errors.New("source file too large")
	// ErrInvalidContent is returned for content that is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid source content")
)

// CSharpParser implements outbound.SourceParser on top of the tree-sitter C# grammar.
// A new tree-sitter parser is created per Parse call, so a CSharpParser may be shared
// between goroutines.
type CSharpParser struct {
	maxFileSize int64
}

// CSharpParserOption configures a CSharpParser.
type CSharpParserOption func(*CSharpParser)

// WithMaxFileSize sets the largest accepted source size in bytes.
func WithMaxFileSize(bytes int64) CSharpParserOption {
	return func(p *CSharpParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// NewCSharpParser creates a parser with DefaultMaxFileSize unless overridden.
func NewCSharpParser(opts ...CSharpParserOption) *CSharpParser {
	p := &CSharpParser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds the declaration tree of a C# compilation unit. Input with syntax errors is
// rejected with an error wrapping outbound.ErrParseFailed.
func (p *CSharpParser) Parse(ctx context.Context, source []byte) (*valueobject.DeclarationTree, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(source)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %w: size %d exceeds limit %d",
			outbound.ErrParseFailed, ErrFileTooLarge, len(source), p.maxFileSize)
	}
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("%w: %w: content is not valid UTF-8", outbound.ErrParseFailed, ErrInvalidContent)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(csharp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("%w: tree-sitter parse failed: %w", outbound.ErrParseFailed, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Type() != nodeCompilationUnit {
		return nil, fmt.Errorf("%w: no compilation unit", outbound.ErrParseFailed)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: source contains syntax errors", outbound.ErrParseFailed)
	}

	result := &valueobject.DeclarationTree{}
	var fileScoped *valueobject.Declaration

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case nodeUsingDirective:
			if u := usingName(child, source); u != "" {
				result.Usings = append(result.Usings, u)
			}
		case nodeFileScopedNamespace:
			fileScoped = p.convertNamespace(child, source)
			result.Roots = append(result.Roots, fileScoped)
		default:
			decl := p.convertMember(child, source)
			if decl == nil {
				continue
			}
			// Older grammars place the members of a file-scoped namespace after it as
			// siblings rather than children.
			if fileScoped != nil {
				fileScoped.Children = append(fileScoped.Children, decl)
				continue
			}
			result.Roots = append(result.Roots, decl)
		}
	}

	slogger.Debug(ctx, "C# source parsed", slogger.Fields{
		"source_length":  len(source),
		"roots":          len(result.Roots),
		"usings":         len(result.Usings),
		"parse_duration": time.Since(start).String(),
	})

	return result, nil
}

// convertMember converts namespace and class members; anything else yields nil.
func (p *CSharpParser) convertMember(node *sitter.Node, source []byte) *valueobject.Declaration {
	switch node.Type() {
	case nodeNamespace, nodeFileScopedNamespace:
		return p.convertNamespace(node, source)
	case nodeClass:
		return p.convertClass(node, source)
	case nodeConstructor:
		return &valueobject.Declaration{
			Kind:       valueobject.ConstructorDeclaration,
			Name:       fieldText(node, "name", source),
			Modifiers:  modifiers(node, source),
			Parameters: parameters(node.ChildByFieldName("parameters"), source),
		}
	case nodeMethod:
		return &valueobject.Declaration{
			Kind:       valueobject.MethodDeclaration,
			Name:       fieldText(node, "name", source),
			Modifiers:  modifiers(node, source),
			Parameters: parameters(node.ChildByFieldName("parameters"), source),
			ReturnType: returnType(node, source),
		}
	default:
		return nil
	}
}

func (p *CSharpParser) convertNamespace(node *sitter.Node, source []byte) *valueobject.Declaration {
	decl := &valueobject.Declaration{
		Kind: valueobject.NamespaceDeclaration,
		Name: fieldText(node, "name", source),
	}
	p.appendMembers(decl, node, source)
	return decl
}

func (p *CSharpParser) convertClass(node *sitter.Node, source []byte) *valueobject.Declaration {
	decl := &valueobject.Declaration{
		Kind:      valueobject.ClassDeclaration,
		Name:      fieldText(node, "name", source),
		Modifiers: modifiers(node, source),
	}
	p.appendMembers(decl, node, source)
	return decl
}

// appendMembers converts the members found in the node's body, or directly under the node
// when the grammar has no declaration_list wrapper (file-scoped namespaces).
func (p *CSharpParser) appendMembers(decl *valueobject.Declaration, node *sitter.Node, source []byte) {
	container := node.ChildByFieldName("body")
	if container == nil {
		container = firstNamedChildOfType(node, nodeDeclarationList)
	}
	if container == nil {
		container = node
	}
	for i := 0; i < int(container.NamedChildCount()); i++ {
		if child := p.convertMember(container.NamedChild(i), source); child != nil {
			decl.Children = append(decl.Children, child)
		}
	}
}

func usingName(node *sitter.Node, source []byte) string {
	text := strings.TrimSpace(node.Content(source))
	text = strings.TrimPrefix(text, "global ")
	text = strings.TrimSpace(strings.TrimPrefix(text, "using"))
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	return strings.Join(strings.Fields(text), " ")
}

func modifiers(node *sitter.Node, source []byte) []string {
	var out []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeModifier {
			out = append(out, strings.TrimSpace(child.Content(source)))
			continue
		}
		if _, ok := csharpModifiers[child.Type()]; ok && !child.IsNamed() {
			out = append(out, child.Type())
		}
	}
	return out
}

// returnType reads the method return type; the field is "returns" in newer grammar
// releases and "type" in older ones.
func returnType(node *sitter.Node, source []byte) string {
	if t := fieldText(node, "returns", source); t != "" {
		return t
	}
	return fieldText(node, "type", source)
}

// parameters reads the list in declaration order. The grammar wraps ordinary parameters in
// parameter nodes but attaches the type and name of a params array directly to the list.
func parameters(list *sitter.Node, source []byte) []valueobject.Parameter {
	if list == nil || list.Type() != nodeParameterList {
		return nil
	}
	var (
		out         []valueobject.Parameter
		pendingType string
	)
	for i := 0; i < int(list.ChildCount()); i++ {
		child := list.Child(i)
		switch {
		case child.Type() == nodeParameter:
			out = append(out, valueobject.Parameter{
				Name:     fieldText(child, "name", source),
				TypeName: fieldText(child, "type", source),
			})
		case list.FieldNameForChild(i) == "type":
			pendingType = normalize(child.Content(source))
		case list.FieldNameForChild(i) == "name":
			out = append(out, valueobject.Parameter{
				Name:     normalize(child.Content(source)),
				TypeName: pendingType,
			})
			pendingType = ""
		}
	}
	return out
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return normalize(child.Content(source))
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func firstNamedChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}
