package providers

// TranslationRequest is the uniform input to every adapter
type TranslationRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"from"`
	TargetLanguage string `json:"to"`
	ModelID        string `json:"model"`
	APIKey         string `json:"apiKey"`
}

// TranslationResponse is produced once per successful translation
type TranslationResponse struct {
	TranslatedText string `json:"translatedText"`
	OriginalText   string `json:"originalText"`
	SourceLanguage string `json:"from"`
	TargetLanguage string `json:"to"`
	ModelID        string `json:"model"`
	Timestamp      int64  `json:"timestamp"` // Unix milliseconds
}

// Sampling parameters shared by all adapters
const (
	Temperature = 0.3
	MaxTokens   = 2000
)
