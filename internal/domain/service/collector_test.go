package service

import (
	"testing"

	"testskel/internal/domain/entity"
	"testskel/internal/domain/valueobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namespace(name string, children ...*valueobject.Declaration) *valueobject.Declaration {
	return &valueobject.Declaration{Kind: valueobject.NamespaceDeclaration, Name: name, Children: children}
}

func class(name string, children ...*valueobject.Declaration) *valueobject.Declaration {
	return &valueobject.Declaration{Kind: valueobject.ClassDeclaration, Name: name, Children: children}
}

func method(name string, modifiers []string, returnType string, params ...valueobject.Parameter) *valueobject.Declaration {
	return &valueobject.Declaration{
		Kind:       valueobject.MethodDeclaration,
		Name:       name,
		Modifiers:  modifiers,
		ReturnType: returnType,
		Parameters: params,
	}
}

func TestNamespaceClassCollector_Collect(t *testing.T) {
	tree := &valueobject.DeclarationTree{
		Roots: []*valueobject.Declaration{
			namespace("Shop",
				class("Cart",
					ctor(public, param("IRepo", "repo")),
					method("Add", public, "void"),
					method("Add", public, "void", param("int", "count")),
					method("hidden", []string{"private"}, "void"),
				),
				class("Empty"),
				namespace("Shop.Billing",
					class("Invoice", method("Send", public, "bool")),
				),
			),
			namespace("Shop",
				class("Order", method("Place", public, "void")),
			),
		},
	}

	groups, err := NewNamespaceClassCollector(nil).Collect(tree)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	shop := groups[0]
	assert.Equal(t, "Shop", shop.Name())
	names := []string{}
	for _, c := range shop.Classes() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"Cart", "Empty", "Order"}, names, "repeated namespace blocks merge")

	cart := shop.Classes()[0]
	assert.Equal(t, []valueobject.Parameter{param("IRepo", "repo")}, cart.ConstructorParameters())
	add, ok := cart.Method("Add")
	require.True(t, ok)
	assert.Equal(t, 2, add.OccurrenceCount)
	_, ok = cart.Method("hidden")
	assert.False(t, ok)

	assert.Equal(t, "Shop.Billing", groups[1].Name())
	assert.Len(t, groups[1].QualifyingClasses(), 1)
}

func TestNamespaceClassCollector_TopLevelClasses(t *testing.T) {
	tests := []struct {
		name  string
		roots []*valueobject.Declaration
		want  []string
	}{
		{
			name:  "class before any namespace is dropped",
			roots: []*valueobject.Declaration{class("Loose", method("Run", public, "void"))},
			want:  nil,
		},
		{
			name: "class after a namespace keeps the recorded namespace",
			roots: []*valueobject.Declaration{
				namespace("First", class("A", method("Run", public, "void"))),
				class("Loose", method("Run", public, "void")),
			},
			want: []string{"First"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := NewNamespaceClassCollector(nil).Collect(&valueobject.DeclarationTree{Roots: tt.roots})
			require.NoError(t, err)
			var got []string
			for _, g := range groups {
				got = append(got, g.Name())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNamespaceClassCollector_EmptyTree(t *testing.T) {
	groups, err := NewNamespaceClassCollector(nil).Collect(nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestNamespaceClassCollector_InvalidClassName(t *testing.T) {
	tree := &valueobject.DeclarationTree{Roots: []*valueobject.Declaration{namespace("Shop", class(""))}}
	_, err := NewNamespaceClassCollector(nil).Collect(tree)
	require.Error(t, err)
	assert.Equal(t, entity.ErrCodeInvalidClassName, entity.ErrorCode(err))
}
