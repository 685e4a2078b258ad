package schema

import (
	"fmt"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Required reports whether the field must be present.
	Required() bool
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string   { return "string" }
func (t *StringType) Required() bool { return true }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// ListType validates JSON arrays. Elements are checked by the parser, which
// knows how to recurse into components.
type ListType struct{}

func (t *ListType) Name() string   { return "list" }
func (t *ListType) Required() bool { return true }

func (t *ListType) Validate(value any) error {
	switch value.(type) {
	case []any, []map[string]any:
		return nil
	default:
		return fmt.Errorf("expected list, got %T", value)
	}
}

// OptionalType accepts a missing or null value, otherwise delegates to the wrapped type.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string   { return t.inner.Name() + "?" }
func (t *OptionalType) Required() bool { return false }

func (t *OptionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.inner.Validate(value)
}

// String creates a string type validator.
func String() Type { return &StringType{} }

// List creates a list type validator.
func List() Type { return &ListType{} }

// Optional makes a field optional.
func Optional(inner Type) Type { return &OptionalType{inner: inner} }
