package providers

import (
	"context"
	"net/http"
)

const (
	// DefaultAnthropicBaseURL is the Anthropic API root
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	// AnthropicVersion is sent as the anthropic-version header
	AnthropicVersion = "2023-06-01"
	// anthropicProbeModel is the cheap model used by TestConnection
	anthropicProbeModel = "claude-3-haiku-20240307"
)

// Anthropic translates through the messages API
type Anthropic struct {
	c *client
}

// NewAnthropic creates an Anthropic adapter
func NewAnthropic(opts ...Option) *Anthropic {
	return &Anthropic{c: newClient(DefaultAnthropicBaseURL, opts...)}
}

func (p *Anthropic) Kind() Kind {
	return KindAnthropic
}

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

func (p *Anthropic) Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	temperature := Temperature
	body, err := p.c.post(ctx, KindAnthropic, "/messages", anthropicHeaders(req.APIKey), messagesRequest{
		Model:       ModelName(req.ModelID),
		MaxTokens:   MaxTokens,
		Temperature: &temperature,
		Messages: []chatMessage{
			{Role: "user", Content: buildMessagesPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)},
		},
	})
	if err != nil {
		return nil, err
	}
	return p.c.result(KindAnthropic, body, "content.0.text", req)
}

// TestConnection sends a minimal messages request
func (p *Anthropic) TestConnection(ctx context.Context, apiKey string) bool {
	return p.c.probe(ctx, KindAnthropic, http.MethodPost, "/messages", anthropicHeaders(apiKey), messagesRequest{
		Model:     anthropicProbeModel,
		MaxTokens: 10,
		Messages:  []chatMessage{{Role: "user", Content: "Hello"}},
	})
}

func anthropicHeaders(apiKey string) map[string]string {
	return map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": AnthropicVersion,
	}
}
