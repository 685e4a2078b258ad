package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxAppIDLength bounds application identifiers.
const MaxAppIDLength = 128

// ValidateAppID rejects identifiers that cannot be used as a URL path
// segment or a storage key.
func ValidateAppID(appID string) error {
	switch {
	case appID == "":
		return fmt.Errorf("%w: empty", ErrInvalidAppID)
	case len(appID) > MaxAppIDLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidAppID, MaxAppIDLength)
	case appID == "." || appID == "..":
		return fmt.Errorf("%w: %q", ErrInvalidAppID, appID)
	case strings.ContainsAny(appID, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidAppID, appID)
	}
	for _, r := range appID {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return fmt.Errorf("%w: %q contains a control character", ErrInvalidAppID, appID)
		}
	}
	return nil
}
