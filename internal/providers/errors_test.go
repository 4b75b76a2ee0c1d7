package providers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    ErrorKind
	}{
		{"401 status", 401, "whatever", ErrorInvalidAPIKey},
		{"403 status", 403, "", ErrorInvalidAPIKey},
		{"429 status", 429, "slow down", ErrorRateLimit},
		{"status wins over wording", 429, "invalid api key", ErrorRateLimit},
		{"unauthorized wording", 400, "Unauthorized request", ErrorInvalidAPIKey},
		{"invalid api key wording", 400, "Incorrect or Invalid API Key provided", ErrorInvalidAPIKey},
		{"authentication wording", 0, "authentication_error", ErrorInvalidAPIKey},
		{"rate limit wording", 400, "Rate limit reached for requests", ErrorRateLimit},
		{"too many requests wording", 0, "Too Many Requests", ErrorRateLimit},
		{"insufficient wording", 402, "insufficient_quota", ErrorQuotaExceeded},
		{"credit wording", 400, "Your credit balance is too low", ErrorQuotaExceeded},
		{"quota wording", 400, "You exceeded your current quota", ErrorQuotaExceeded},
		{"server error", 500, "HTTP 500", ErrorUnknown},
		{"transport error", 0, "connection refused", ErrorUnknown},
		{"empty", 0, "", ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.status, tt.message); got != tt.want {
				t.Errorf("Classify(%d, %q) = %v, want %v", tt.status, tt.message, got, tt.want)
			}
		})
	}
}

// **Feature: provider-dispatch, Property 1: Status classification**
//
// *For any* provider message, a 401/403 status SHALL classify as INVALID_API_KEY
// and a 429 status SHALL classify as RATE_LIMIT.
func TestProperty1_StatusClassification(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("401 and 403 classify as INVALID_API_KEY", prop.ForAll(
		func(status int, message string) bool {
			return Classify(status, message) == ErrorInvalidAPIKey
		},
		gen.OneConstOf(http.StatusUnauthorized, http.StatusForbidden),
		gen.AnyString(),
	))

	properties.Property("429 classifies as RATE_LIMIT", prop.ForAll(
		func(message string) bool {
			return Classify(http.StatusTooManyRequests, message) == ErrorRateLimit
		},
		gen.AnyString(),
	))

	properties.Property("classification is always one of the four kinds", prop.ForAll(
		func(status int, message string) bool {
			switch Classify(status, message) {
			case ErrorInvalidAPIKey, ErrorRateLimit, ErrorQuotaExceeded, ErrorUnknown:
				return true
			}
			return false
		},
		gen.IntRange(0, 599),
		gen.AnyString(),
	))

	properties.Property("quota wording classifies as QUOTA_EXCEEDED on neutral status", prop.ForAll(
		func(word string, prefix string) bool {
			// keep the prefix free of higher-priority wording
			prefix = strings.Map(func(r rune) rune {
				if r >= 'a' && r <= 'z' {
					return r
				}
				return -1
			}, strings.ToLower(prefix))
			if Classify(0, prefix) != ErrorUnknown {
				return true
			}
			return Classify(http.StatusBadRequest, prefix+" "+word) == ErrorQuotaExceeded
		},
		gen.OneConstOf("insufficient", "credit", "quota"),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestTranslationErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newTranslationError(KindOpenAI, 0, "boom", cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false")
	}
	var te *TranslationError
	if !errors.As(error(err), &te) {
		t.Fatalf("errors.As failed")
	}
	if te.Kind != ErrorUnknown || te.Message != "boom" {
		t.Errorf("got kind %v message %q", te.Kind, te.Message)
	}
}

func TestNewTranslationErrorMessages(t *testing.T) {
	err := newTranslationError(KindAnthropic, 401, "invalid x-api-key", nil)
	if err.Kind != ErrorInvalidAPIKey {
		t.Errorf("Kind = %v", err.Kind)
	}
	if err.Message != errorUserMessages[ErrorInvalidAPIKey] {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Detail != "invalid x-api-key" {
		t.Errorf("Detail = %q", err.Detail)
	}

	err = newTranslationError(KindAnthropic, 0, "", nil)
	if err.Message != "translation failed" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"openai shape", 401, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, "Incorrect API key provided"},
		{"anthropic shape", 429, `{"type":"error","error":{"type":"rate_limit_error","message":"Rate limited"}}`, "Rate limited"},
		{"empty message", 500, `{"error":{"message":""}}`, "HTTP 500"},
		{"not json", 502, `<html>Bad Gateway</html>`, "HTTP 502"},
		{"empty body", 503, ``, "HTTP 503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractErrorMessage(tt.status, []byte(tt.body)); got != tt.want {
				t.Errorf("ExtractErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
