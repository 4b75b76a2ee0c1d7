package providers

import (
	"context"
	"net/http"
)

const (
	// DefaultOpenRouterBaseURL is the OpenRouter API root
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	// OpenRouter attribution headers
	openRouterReferer = "https://quicktranslate.extension"
	openRouterTitle   = "QuickTranslate"
)

// OpenRouter translates through OpenRouter's OpenAI-compatible API
type OpenRouter struct {
	c *client
}

// NewOpenRouter creates an OpenRouter adapter
func NewOpenRouter(opts ...Option) *OpenRouter {
	return &OpenRouter{c: newClient(DefaultOpenRouterBaseURL, opts...)}
}

func (p *OpenRouter) Kind() Kind {
	return KindOpenRouter
}

func (p *OpenRouter) Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	headers := bearer(req.APIKey)
	headers["HTTP-Referer"] = openRouterReferer
	headers["X-Title"] = openRouterTitle

	body, err := p.c.post(ctx, KindOpenRouter, "/chat/completions", headers, chatBody(req))
	if err != nil {
		return nil, err
	}
	return p.c.result(KindOpenRouter, body, "choices.0.message.content", req)
}

// TestConnection sends GET /models
func (p *OpenRouter) TestConnection(ctx context.Context, apiKey string) bool {
	headers := bearer(apiKey)
	headers["HTTP-Referer"] = openRouterReferer
	return p.c.probe(ctx, KindOpenRouter, http.MethodGet, "/models", headers, nil)
}
