package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// Issue codes.
const (
	CodeRequired             = "required"
	CodeInvalidType          = "invalid_type"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeCycle                = "cycle"
	CodeTooDeep              = "too_deep"
	CodeNilComponent         = "nil_component"
	CodeParseError           = "parse_error"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Path   string // JSON Pointer of the offending value, e.g. /0/children/1/label
	Code   string // One of the Code* constants
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	if e.Value == nil {
		return fmt.Sprintf("%s at %s: %s", e.Code, path, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s (got %T)", e.Code, path, e.Reason, e.Value)
}

// ViolationError aggregates every issue found in a tree.
// It unwraps to domain.ErrSchemaViolation.
type ViolationError struct {
	Issues []*ValidationError
}

func (e *ViolationError) Error() string {
	if len(e.Issues) == 1 {
		return "schema violation: " + e.Issues[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "schema violation: %d issues:\n", len(e.Issues))
	for i, iss := range e.Issues {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, iss.Error())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (e *ViolationError) Unwrap() error {
	return domain.ErrSchemaViolation
}

// Issues returns all validation issues if err wraps a ViolationError.
// Otherwise returns nil.
func Issues(err error) []*ValidationError {
	var v *ViolationError
	if errors.As(err, &v) {
		return v.Issues
	}
	return nil
}
