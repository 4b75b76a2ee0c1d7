package models

// ModelConfig describes one selectable translation model
type ModelConfig struct {
	ID          string   `json:"id"` // "<provider>/<model>", globally unique
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Enabled     bool     `json:"enabled"`
}

// RemoteModelConfig is the catalog record fetched remotely and cached locally
type RemoteModelConfig struct {
	Models      []ModelConfig `json:"models"`
	LastUpdated int64         `json:"lastUpdated"` // Unix milliseconds
	Version     string        `json:"version"`
}
