package service

import "testskel/internal/domain/valueobject"

// Type names with a dedicated placeholder value.
const (
	StringTypeName  = "string"
	IntegerTypeName = "int"
)

// DefaultValue returns the placeholder expression for a declared type: an empty string
// literal for string, zero for int and the default literal for every other type name.
func DefaultValue(typeName string) valueobject.Expression {
	switch typeName {
	case StringTypeName:
		return &valueobject.StringLiteral{Value: ""}
	case IntegerTypeName:
		return &valueobject.NumberLiteral{Text: "0"}
	default:
		return &valueobject.DefaultLiteral{}
	}
}
