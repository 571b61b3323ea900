package entity

import "errors"

// DomainError is a model invariant violation identified by a stable code.
type DomainError struct {
	message string
	code    string
}

// NewDomainError creates a new domain error.
func NewDomainError(message, code string) *DomainError {
	return &DomainError{
		message: message,
		code:    code,
	}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.message
}

// Code returns the error code.
func (e *DomainError) Code() string {
	return e.code
}

// Is matches any DomainError with the same code, so callers can compare against a
// zero-message sentinel such as NewDomainError("", ErrCodeInvalidClassName).
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.code == e.code
}

// ErrorCode returns the code of the first DomainError in err's chain, or "".
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.code
	}
	return ""
}
