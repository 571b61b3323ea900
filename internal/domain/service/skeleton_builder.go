package service

import (
	"errors"
	"fmt"
	"strconv"

	"testskel/internal/domain/entity"
	"testskel/internal/domain/valueobject"
)

// Names used in generated test code.
const (
	FixtureName         = "_sut"
	ResultName          = "result"
	ExpectedName        = "expected"
	FailureMessage      = "autogenerated"
	TestClassSuffix     = "Tests"
	TestMethodSuffix    = "Test"
	TestNamespaceSuffix = ".Tests"
	MockTypeName        = "Mock"
	TestAttribute       = "Fact"
	TestFrameworkUsing  = "Xunit"
	MockLibraryUsing    = "Moq"
	assertTarget        = "Assert"
	inferredType        = "var"
)

// ErrNoPublicMethods is returned when a skeleton is requested for a class without methods.
var ErrNoPublicMethods = errors.New("class has no public methods")

// TestSkeletonBuilder turns extracted models into the test syntax model.
type TestSkeletonBuilder struct {
	selector *ConstructorSelector
}

// NewTestSkeletonBuilder creates a builder. The selector's predicate decides which constructor
// parameters are mocked; a nil selector uses the default naming convention.
func NewTestSkeletonBuilder(selector *ConstructorSelector) *TestSkeletonBuilder {
	if selector == nil {
		selector = NewConstructorSelector()
	}
	return &TestSkeletonBuilder{selector: selector}
}

// BuildCompilationUnit assembles the test file for the qualifying namespaces. The result is
// empty (IsEmpty) when no namespace qualifies.
func (b *TestSkeletonBuilder) BuildCompilationUnit(
	sourceUsings []string,
	groups []*entity.NamespaceGroup,
) (*valueobject.CompilationUnit, error) {
	unit := &valueobject.CompilationUnit{}

	for _, group := range groups {
		classes := group.QualifyingClasses()
		if len(classes) == 0 {
			continue
		}
		ns := valueobject.NamespaceDecl{Name: group.Name() + TestNamespaceSuffix}
		for _, class := range classes {
			decl, err := b.BuildClass(class)
			if err != nil {
				return nil, fmt.Errorf("namespace %s: %w", group.Name(), err)
			}
			ns.Classes = append(ns.Classes, decl)
		}
		unit.Namespaces = append(unit.Namespaces, ns)
	}

	if unit.IsEmpty() {
		return unit, nil
	}

	usings := make([]string, 0, len(sourceUsings)+2+len(unit.Namespaces))
	usings = append(usings, sourceUsings...)
	usings = append(usings, TestFrameworkUsing, MockLibraryUsing)
	for _, group := range groups {
		if group.IsQualifying() {
			usings = append(usings, group.Name())
		}
	}
	unit.Usings = dedupe(usings)

	return unit, nil
}

// BuildClass produces the test class for one class model: fixture field, mock fields,
// constructor and one stub per method occurrence.
func (b *TestSkeletonBuilder) BuildClass(class *entity.ClassModel) (valueobject.ClassDecl, error) {
	if !class.HasMethods() {
		return valueobject.ClassDecl{}, fmt.Errorf("%s: %w", class.Name(), ErrNoPublicMethods)
	}

	testClassName := class.Name() + TestClassSuffix
	ctorParams := class.ConstructorParameters()

	members := []valueobject.Member{
		&valueobject.FieldDecl{Type: class.Name(), Name: FixtureName},
	}
	for _, p := range ctorParams {
		if b.selector.IsFakeable(p) {
			members = append(members, &valueobject.FieldDecl{Type: MockType(p.TypeName), Name: "_" + p.Name})
		}
	}

	members = append(members, &valueobject.ConstructorDecl{
		Name: testClassName,
		Body: b.constructorBody(class.Name(), ctorParams),
	})

	for _, method := range class.Methods() {
		for i := 1; i <= method.OccurrenceCount; i++ {
			members = append(members, &valueobject.MethodDecl{
				Name:       TestMethodName(method.Name, i),
				Attributes: []string{TestAttribute},
				ReturnType: valueobject.VoidType,
				Body:       testMethodBody(method),
			})
		}
	}

	return valueobject.ClassDecl{Name: testClassName, Members: members}, nil
}

// TestMethodName names the stub for the n-th occurrence (1-based) of a method:
// "MTest", "M2Test", "M3Test", ...
func TestMethodName(method string, occurrence int) string {
	if occurrence <= 1 {
		return method + TestMethodSuffix
	}
	return method + strconv.Itoa(occurrence) + TestMethodSuffix
}

// MockType returns the mock double type for a dependency type, e.g. Mock<IRepo>.
func MockType(typeName string) string {
	return MockTypeName + "<" + typeName + ">"
}

func (b *TestSkeletonBuilder) constructorBody(className string, params []valueobject.Parameter) []valueobject.Statement {
	var body []valueobject.Statement
	args := make([]valueobject.Expression, 0, len(params))

	for _, p := range params {
		if b.selector.IsFakeable(p) {
			body = append(body, &valueobject.LocalDecl{
				Type: inferredType,
				Name: p.Name,
				Init: &valueobject.NewMock{Type: p.TypeName},
			})
			args = append(args, &valueobject.Ident{Name: p.Name})
			continue
		}
		args = append(args, &valueobject.DefaultLiteral{})
	}

	body = append(body, &valueobject.LocalDecl{
		Type: inferredType,
		Name: FixtureName,
		Init: &valueobject.NewObject{Type: className, Args: args},
	})
	return body
}

func testMethodBody(method entity.MethodGroup) []valueobject.Statement {
	body := make([]valueobject.Statement, 0, len(method.Parameters)+4)
	args := make([]valueobject.Expression, 0, len(method.Parameters))

	for _, p := range method.Parameters {
		body = append(body, &valueobject.LocalDecl{Type: p.TypeName, Name: p.Name, Init: DefaultValue(p.TypeName)})
		args = append(args, &valueobject.Ident{Name: p.Name})
	}

	call := &valueobject.Invocation{Target: FixtureName, Method: method.Name, Args: args}
	if method.ReturnsValue() {
		body = append(body,
			&valueobject.LocalDecl{Type: method.ReturnType, Name: ResultName, Init: call},
			&valueobject.LocalDecl{Type: method.ReturnType, Name: ExpectedName, Init: DefaultValue(method.ReturnType)},
			&valueobject.ExprStmt{Expr: &valueobject.Invocation{
				Target: assertTarget,
				Method: "Equal",
				Args:   []valueobject.Expression{&valueobject.Ident{Name: ExpectedName}, &valueobject.Ident{Name: ResultName}},
			}},
		)
	} else {
		body = append(body, &valueobject.ExprStmt{Expr: call})
	}

	body = append(body, &valueobject.ExprStmt{Expr: &valueobject.Invocation{
		Target: assertTarget,
		Method: "Fail",
		Args:   []valueobject.Expression{&valueobject.StringLiteral{Value: FailureMessage}},
	}})
	return body
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
