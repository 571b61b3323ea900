package entity

import (
	"testskel/internal/domain/valueobject"
)

// Error codes for model construction failures.
const (
	ErrCodeInvalidClassName     = "invalid_class_name"
	ErrCodeInvalidMethodName    = "invalid_method_name"
	ErrCodeInvalidNamespaceName = "invalid_namespace_name"
)

// MethodGroup collapses all public overloads of one method name. Parameters and ReturnType
// come from the first overload visited; OccurrenceCount counts every overload.
type MethodGroup struct {
	Name            string
	Parameters      []valueobject.Parameter
	ReturnType      string
	OccurrenceCount int
}

// ReturnsValue reports whether invoking the method yields a value.
func (m MethodGroup) ReturnsValue() bool {
	return m.ReturnType != "" && m.ReturnType != valueobject.VoidType
}

// ClassModel holds what the generator needs to know about one class.
type ClassModel struct {
	name                  string
	constructorParameters []valueobject.Parameter
	methods               []MethodGroup
	index                 map[string]int
}

// NewClassModel creates an empty class model.
func NewClassModel(name string, constructorParameters []valueobject.Parameter) (*ClassModel, error) {
	if name == "" {
		return nil, NewDomainError("class name cannot be empty", ErrCodeInvalidClassName)
	}
	params := make([]valueobject.Parameter, len(constructorParameters))
	copy(params, constructorParameters)
	return &ClassModel{
		name:                  name,
		constructorParameters: params,
		index:                 make(map[string]int),
	}, nil
}

// Name returns the class name.
func (c *ClassModel) Name() string { return c.name }

// ConstructorParameters returns the parameters of the selected constructor.
func (c *ClassModel) ConstructorParameters() []valueobject.Parameter {
	out := make([]valueobject.Parameter, len(c.constructorParameters))
	copy(out, c.constructorParameters)
	return out
}

// AddMethod records one public method declaration. A repeated name increments the
// occurrence count of the existing group and keeps its original signature.
func (c *ClassModel) AddMethod(name string, parameters []valueobject.Parameter, returnType string) error {
	if name == "" {
		return NewDomainError("method name cannot be empty", ErrCodeInvalidMethodName)
	}
	if i, ok := c.index[name]; ok {
		c.methods[i].OccurrenceCount++
		return nil
	}
	params := make([]valueobject.Parameter, len(parameters))
	copy(params, parameters)
	c.index[name] = len(c.methods)
	c.methods = append(c.methods, MethodGroup{
		Name:            name,
		Parameters:      params,
		ReturnType:      returnType,
		OccurrenceCount: 1,
	})
	return nil
}

// Methods returns the method groups in order of first appearance.
func (c *ClassModel) Methods() []MethodGroup {
	out := make([]MethodGroup, len(c.methods))
	copy(out, c.methods)
	return out
}

// Method looks a group up by name.
func (c *ClassModel) Method(name string) (MethodGroup, bool) {
	i, ok := c.index[name]
	if !ok {
		return MethodGroup{}, false
	}
	return c.methods[i], true
}

// HasMethods reports whether the class qualifies for output.
func (c *ClassModel) HasMethods() bool {
	return len(c.methods) > 0
}

// NamespaceGroup is a namespace and the classes attributed to it, in first-seen order.
type NamespaceGroup struct {
	name    string
	classes []*ClassModel
}

// NewNamespaceGroup creates an empty namespace group.
func NewNamespaceGroup(name string) (*NamespaceGroup, error) {
	if name == "" {
		return nil, NewDomainError("namespace name cannot be empty", ErrCodeInvalidNamespaceName)
	}
	return &NamespaceGroup{name: name}, nil
}

// Name returns the namespace name.
func (n *NamespaceGroup) Name() string { return n.name }

// AddClass appends a class to the namespace.
func (n *NamespaceGroup) AddClass(class *ClassModel) {
	n.classes = append(n.classes, class)
}

// Classes returns every class attributed to the namespace.
func (n *NamespaceGroup) Classes() []*ClassModel {
	out := make([]*ClassModel, len(n.classes))
	copy(out, n.classes)
	return out
}

// QualifyingClasses returns the classes with at least one public method.
func (n *NamespaceGroup) QualifyingClasses() []*ClassModel {
	var out []*ClassModel
	for _, c := range n.classes {
		if c.HasMethods() {
			out = append(out, c)
		}
	}
	return out
}

// IsQualifying reports whether the namespace produces output.
func (n *NamespaceGroup) IsQualifying() bool {
	for _, c := range n.classes {
		if c.HasMethods() {
			return true
		}
	}
	return false
}
