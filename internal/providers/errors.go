package providers

import (
	"net/http"
	"strings"
)

// ErrorKind classifies a failed translation
type ErrorKind string

const (
	ErrorInvalidAPIKey ErrorKind = "INVALID_API_KEY"
	ErrorRateLimit     ErrorKind = "RATE_LIMIT"
	ErrorQuotaExceeded ErrorKind = "QUOTA_EXCEEDED"
	ErrorUnknown       ErrorKind = "UNKNOWN_ERROR"
)

// MsgEmptyResponse is reported when a provider answers 2xx without usable text
const MsgEmptyResponse = "empty translation response"

// User-facing messages for the classified kinds
var errorUserMessages = map[ErrorKind]string{
	ErrorInvalidAPIKey: "API key is invalid or expired",
	ErrorRateLimit:     "Too many requests, please retry later",
	ErrorQuotaExceeded: "API quota exhausted",
}

// Wording checked when the status code is not conclusive. Order matters:
// the first matching group wins.
var errorKeywords = []struct {
	kind  ErrorKind
	words []string
}{
	{ErrorInvalidAPIKey, []string{"401", "unauthorized", "invalid api key", "authentication"}},
	{ErrorRateLimit, []string{"429", "rate limit", "too many requests"}},
	{ErrorQuotaExceeded, []string{"insufficient", "credit", "quota"}},
}

// TranslationError is the only error type adapters return from Translate
type TranslationError struct {
	Kind     ErrorKind
	Message  string // human readable
	Provider Kind
	Status   int    // HTTP status, 0 for transport failures
	Detail   string // raw provider message
	Cause    error
}

func (e *TranslationError) Error() string {
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Classify maps an HTTP status and provider message to an error kind.
// Status checks take precedence over wording; pass status 0 when there was no response.
func Classify(status int, message string) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorInvalidAPIKey
	case http.StatusTooManyRequests:
		return ErrorRateLimit
	}

	lower := strings.ToLower(message)
	for _, group := range errorKeywords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.kind
			}
		}
	}
	return ErrorUnknown
}

// newTranslationError classifies and builds a TranslationError
func newTranslationError(provider Kind, status int, detail string, cause error) *TranslationError {
	kind := Classify(status, detail)
	msg := errorUserMessages[kind]
	if msg == "" {
		msg = detail
	}
	if msg == "" {
		msg = "translation failed"
	}
	return &TranslationError{
		Kind:     kind,
		Message:  msg,
		Provider: provider,
		Status:   status,
		Detail:   detail,
		Cause:    cause,
	}
}
