package errors

import (
	"strings"
	"unicode"
)

// ValidateStudyName validates a study name for safety and correctness.
// Study names end up in log lines, store keys and exported file names.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators
//   - Maximum length of 256 characters
func ValidateStudyName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidArgument, "study name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidArgument, "study name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "study name contains control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidArgument, "study name cannot contain path separators")
	}

	return nil
}

// ValidateParticipant validates a participant identifier supplied by an
// experiment client. The same conservative rules apply as for study names,
// since participant identifiers are stored and logged verbatim.
func ValidateParticipant(id string) error {
	if id == "" {
		return New(ErrCodeInvalidArgument, "participant identifier cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidArgument, "participant identifier too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "participant identifier contains control characters")
		}
	}

	return nil
}
