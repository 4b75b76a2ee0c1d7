package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const maxLanguageLength = 64

// InputValidator validates user input
type InputValidator struct{}

// NewInputValidator creates a new InputValidator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateAPIKey rejects empty keys and keys containing whitespace
func (iv *InputValidator) ValidateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return fmt.Errorf("API key contains whitespace")
	}
	if len(key) > 512 {
		return fmt.Errorf("API key is too long (max 512 characters)")
	}
	return nil
}

// ValidateLanguage rejects blank languages. Anything else, including names
// like "French" or "auto", is passed to the provider verbatim.
func (iv *InputValidator) ValidateLanguage(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if len(code) > maxLanguageLength {
		return fmt.Errorf("language is too long (max %d characters)", maxLanguageLength)
	}
	if strings.IndexFunc(code, unicode.IsControl) >= 0 {
		return fmt.Errorf("language contains control characters: %q", code)
	}
	return nil
}

// ValidateText rejects blank text
func (iv *InputValidator) ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	return nil
}
