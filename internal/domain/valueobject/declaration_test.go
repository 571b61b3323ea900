package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclarationKind_String(t *testing.T) {
	tests := []struct {
		kind DeclarationKind
		want string
	}{
		{NamespaceDeclaration, "namespace"},
		{ClassDeclaration, "class"},
		{ConstructorDeclaration, "constructor"},
		{MethodDeclaration, "method"},
		{DeclarationKind(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestDeclaration_IsPublic(t *testing.T) {
	tests := []struct {
		name      string
		modifiers []string
		want      bool
	}{
		{"no modifiers", nil, false},
		{"public", []string{"public"}, true},
		{"public static", []string{"public", "static"}, true},
		{"private", []string{"private"}, false},
		{"internal protected", []string{"protected", "internal"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Declaration{Kind: MethodDeclaration, Name: "Run", Modifiers: tt.modifiers}
			assert.Equal(t, tt.want, d.IsPublic())
		})
	}
}

func TestDeclaration_ChildrenOfKind(t *testing.T) {
	class := &Declaration{
		Kind: ClassDeclaration,
		Name: "Cart",
		Children: []*Declaration{
			{Kind: MethodDeclaration, Name: "Add"},
			{Kind: ConstructorDeclaration, Name: "Cart"},
			{Kind: MethodDeclaration, Name: "Remove"},
		},
	}

	methods := class.ChildrenOfKind(MethodDeclaration)
	assert.Len(t, methods, 2)
	assert.Equal(t, "Add", methods[0].Name)
	assert.Equal(t, "Remove", methods[1].Name)
	assert.Len(t, class.ChildrenOfKind(ConstructorDeclaration), 1)
	assert.Empty(t, class.ChildrenOfKind(NamespaceDeclaration))
}

func TestDeclarationTree_Walk(t *testing.T) {
	tree := &DeclarationTree{
		Roots: []*Declaration{
			{
				Kind: NamespaceDeclaration,
				Name: "A",
				Children: []*Declaration{
					{Kind: ClassDeclaration, Name: "One", Children: []*Declaration{{Kind: MethodDeclaration, Name: "M"}}},
					{Kind: NamespaceDeclaration, Name: "A.B", Children: []*Declaration{{Kind: ClassDeclaration, Name: "Two"}}},
				},
			},
			nil,
			{Kind: ClassDeclaration, Name: "Three"},
		},
	}

	type visit struct {
		name  string
		depth int
	}
	var visits []visit
	tree.Walk(func(node *Declaration, ancestors []*Declaration) bool {
		visits = append(visits, visit{node.Name, len(ancestors)})
		return node.Kind != ClassDeclaration || node.Name != "One"
	})

	assert.Equal(t, []visit{
		{"A", 0},
		{"One", 1},
		{"A.B", 1},
		{"Two", 2},
		{"Three", 0},
	}, visits, "children of One are skipped")
}

func TestDeclarationTree_WalkAncestorsAreIndependent(t *testing.T) {
	tree := &DeclarationTree{
		Roots: []*Declaration{{
			Kind: NamespaceDeclaration,
			Name: "Root",
			Children: []*Declaration{
				{Kind: ClassDeclaration, Name: "First", Children: []*Declaration{{Kind: MethodDeclaration, Name: "X"}}},
				{Kind: ClassDeclaration, Name: "Second", Children: []*Declaration{{Kind: MethodDeclaration, Name: "Y"}}},
			},
		}},
	}

	chains := map[string][]string{}
	var saved [][]*Declaration
	tree.Walk(func(node *Declaration, ancestors []*Declaration) bool {
		saved = append(saved, ancestors)
		names := make([]string, 0, len(ancestors))
		for _, a := range ancestors {
			names = append(names, a.Name)
		}
		chains[node.Name] = names
		return true
	})

	assert.Equal(t, []string{"Root", "First"}, chains["X"])
	assert.Equal(t, []string{"Root", "Second"}, chains["Y"])
	assert.Equal(t, "First", saved[2][1].Name, "a later sibling must not overwrite a saved chain")
}

func TestDeclarationTree_IsEmpty(t *testing.T) {
	var nilTree *DeclarationTree
	assert.True(t, nilTree.IsEmpty())
	assert.True(t, (&DeclarationTree{Usings: []string{"System"}}).IsEmpty())
	assert.False(t, (&DeclarationTree{Roots: []*Declaration{{Kind: NamespaceDeclaration, Name: "A"}}}).IsEmpty())

	nilTree.Walk(func(*Declaration, []*Declaration) bool {
		t.Fatal("nil tree must not be visited")
		return false
	})
}

func TestCompilationUnit_IsEmpty(t *testing.T) {
	var nilUnit *CompilationUnit
	assert.True(t, nilUnit.IsEmpty())
	assert.True(t, (&CompilationUnit{Usings: []string{"Xunit"}}).IsEmpty())
	assert.False(t, (&CompilationUnit{Namespaces: []NamespaceDecl{{Name: "A.Tests"}}}).IsEmpty())
}
