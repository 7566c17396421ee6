package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits enforced before a request reaches the generator or a store.
const (
	MaxNameLength     = 100
	MaxThemeLength    = 200
	MaxModelLength    = 64
	MaxCategoryLength = 64
	MaxVoterIDLength  = 128
	MinSkillsCount    = 1
	MaxSkillsCount    = 20
)

// ValidateText validates a free-form text field such as an agent name or theme.
//
// The validation rules are intentionally conservative:
//   - No empty (or whitespace-only) values
//   - No control characters or null bytes
//   - Maximum length of maxLen characters
func ValidateText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", field)
	}

	if utf8.RuneCountInString(value) > maxLen {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, maxLen)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateSkillsCount checks that n is within [MinSkillsCount, MaxSkillsCount].
func ValidateSkillsCount(n int) error {
	if n < MinSkillsCount || n > MaxSkillsCount {
		return New(ErrCodeInvalidInput, "skillsCount must be between %d and %d", MinSkillsCount, MaxSkillsCount)
	}
	return nil
}

// signatureIDRegex matches signature identifiers with or without their
// leading zeros.
var signatureIDRegex = regexp.MustCompile(`^[0-9A-Fa-f]{1,8}$`)

// ValidateSignatureID validates a signature identifier from a request path or body.
func ValidateSignatureID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSignature, "signatureId cannot be empty")
	}
	if !signatureIDRegex.MatchString(id) {
		return New(ErrCodeInvalidSignature, "invalid signatureId: %q", id)
	}
	return nil
}

// NormalizeSignatureID upper-cases id and left-pads it with zeros to 8
// characters, the form the generator produces. Callers validate first.
func NormalizeSignatureID(id string) string {
	if n := len(id); n < 8 {
		id = strings.Repeat("0", 8-n) + id
	}
	return strings.ToUpper(id)
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
