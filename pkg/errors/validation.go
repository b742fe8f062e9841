package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds node, edge and type identifiers.
const maxIDLength = 256

// ValidateID validates a node, edge or type identifier.
//
// Identifiers end up as map keys, DOT node names and JSON object keys for
// renderer diffing, so the rules are conservative:
//   - No empty or whitespace-only identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id %q contains control characters", kind, id)
		}
	}
	return nil
}

// ValidateTypeName validates a node or edge type reference.
// Type names follow the same rules as identifiers but must not contain spaces.
func ValidateTypeName(kind, name string) error {
	if err := ValidateID(kind+" type", name); err != nil {
		return err
	}
	if strings.ContainsAny(name, " \t") {
		return New(ErrCodeInvalidInput, "%s type %q cannot contain whitespace", kind, name)
	}
	return nil
}
