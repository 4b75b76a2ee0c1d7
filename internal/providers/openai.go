package providers

import (
	"context"
	"net/http"
)

// DefaultOpenAIBaseURL is the OpenAI API root
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI translates through the chat completions API
type OpenAI struct {
	c *client
}

// NewOpenAI creates an OpenAI adapter
func NewOpenAI(opts ...Option) *OpenAI {
	return &OpenAI{c: newClient(DefaultOpenAIBaseURL, opts...)}
}

func (p *OpenAI) Kind() Kind {
	return KindOpenAI
}

func (p *OpenAI) Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	body, err := p.c.post(ctx, KindOpenAI, "/chat/completions", bearer(req.APIKey), chatBody(req))
	if err != nil {
		return nil, err
	}
	return p.c.result(KindOpenAI, body, "choices.0.message.content", req)
}

// TestConnection sends HEAD /models
func (p *OpenAI) TestConnection(ctx context.Context, apiKey string) bool {
	return p.c.probe(ctx, KindOpenAI, http.MethodHead, "/models", bearer(apiKey), nil)
}

func bearer(apiKey string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + apiKey}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatBody builds the OpenAI-shaped request used by OpenAI and OpenRouter
func chatBody(req TranslationRequest) chatRequest {
	return chatRequest{
		Model: ModelName(req.ModelID),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildChatPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}
}
