package config

import "quicktranslate/config/models"

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.3
)

var defaultModels = []struct {
	id, name, provider string
}{
	{"openai/gpt-4o-mini", "GPT-4o Mini", "openai"},
	{"openai/gpt-4o", "GPT-4o", "openai"},
	{"anthropic/claude-3-haiku-20240307", "Claude 3 Haiku", "anthropic"},
	{"anthropic/claude-3-5-sonnet-20241022", "Claude 3.5 Sonnet", "anthropic"},
	{"openrouter/openai/gpt-4o-mini", "GPT-4o Mini (OpenRouter)", "openrouter"},
	{"openrouter/anthropic/claude-3-haiku", "Claude 3 Haiku (OpenRouter)", "openrouter"},
}

// DefaultModels returns a fresh copy of the built-in model list.
// It is the last-resort fallback and is never persisted.
func DefaultModels() []models.ModelConfig {
	out := make([]models.ModelConfig, 0, len(defaultModels))
	for _, d := range defaultModels {
		maxTokens := defaultMaxTokens
		temperature := defaultTemperature
		out = append(out, models.ModelConfig{
			ID:          d.id,
			Name:        d.name,
			Provider:    d.provider,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			Enabled:     true,
		})
	}
	return out
}

// DefaultModelID is selected when the user has not chosen a model
const DefaultModelID = "openai/gpt-4o-mini"
