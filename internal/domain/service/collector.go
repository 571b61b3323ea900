// Package service holds the pure extraction and skeleton-building logic. Nothing in this
// package performs I/O.
package service

import (
	"fmt"

	"testskel/internal/domain/entity"
	"testskel/internal/domain/valueobject"
)

// NamespaceClassCollector folds a declaration tree into namespace groups.
type NamespaceClassCollector struct {
	selector *ConstructorSelector
}

// NewNamespaceClassCollector creates a collector. A nil selector falls back to the default
// naming-convention selector.
func NewNamespaceClassCollector(selector *ConstructorSelector) *NamespaceClassCollector {
	if selector == nil {
		selector = NewConstructorSelector()
	}
	return &NamespaceClassCollector{selector: selector}
}

// Collect traverses the tree once in document order and returns the namespace groups in the
// order their first class was seen. Classes that cannot be attributed to any namespace are
// dropped. The returned groups are not modified afterwards.
func (c *NamespaceClassCollector) Collect(tree *valueobject.DeclarationTree) ([]*entity.NamespaceGroup, error) {
	if tree.IsEmpty() {
		return nil, nil
	}

	var (
		groups  []*entity.NamespaceGroup
		byName  = make(map[string]*entity.NamespaceGroup)
		current string
		err     error
	)

	tree.Walk(func(node *valueobject.Declaration, ancestors []*valueobject.Declaration) bool {
		if err != nil {
			return false
		}
		if node.Kind != valueobject.ClassDeclaration {
			return node.Kind == valueobject.NamespaceDeclaration
		}

		current = namespaceFor(ancestors, current)
		if current == "" {
			return true
		}

		class, buildErr := c.buildClass(node)
		if buildErr != nil {
			err = buildErr
			return false
		}

		group, ok := byName[current]
		if !ok {
			group, err = entity.NewNamespaceGroup(current)
			if err != nil {
				return false
			}
			byName[current] = group
			groups = append(groups, group)
		}
		group.AddClass(class)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("collect namespaces: %w", err)
	}

	return groups, nil
}

// namespaceFor returns the nearest enclosing namespace of a class. When no namespace encloses
// the class the previously recorded namespace is kept, which may belong to an earlier
// sibling scope. This is the single place to change if that attribution should differ.
func namespaceFor(ancestors []*valueobject.Declaration, recorded string) string {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Kind == valueobject.NamespaceDeclaration {
			return ancestors[i].Name
		}
	}
	return recorded
}

func (c *NamespaceClassCollector) buildClass(node *valueobject.Declaration) (*entity.ClassModel, error) {
	ctorParams := c.selector.Select(node.ChildrenOfKind(valueobject.ConstructorDeclaration))

	class, err := entity.NewClassModel(node.Name, ctorParams)
	if err != nil {
		return nil, err
	}

	for _, m := range node.ChildrenOfKind(valueobject.MethodDeclaration) {
		if !m.IsPublic() {
			continue
		}
		if err := class.AddMethod(m.Name, m.Parameters, m.ReturnType); err != nil {
			return nil, fmt.Errorf("class %s: %w", node.Name, err)
		}
	}
	return class, nil
}
