package tui

import (
	"errors"
	"strings"

	"quicktranslate/config/validation"
	"quicktranslate/internal/providers"

	"github.com/charmbracelet/bubbles/textinput"
)

// FormData is what the settings form saves
type FormData struct {
	APIKey string
	Model  string
}

// Validate checks the form before saving or testing
func (f *FormData) Validate() error {
	key := strings.TrimSpace(f.APIKey)
	if key == "" {
		return errors.New("请输入API密钥")
	}
	if err := validation.NewInputValidator().ValidateAPIKey(key); err != nil {
		return errors.New("API密钥格式无效")
	}
	if f.Model == "" {
		return errors.New("请选择模型")
	}
	if _, err := providers.ResolveKind(f.Model); err != nil {
		return errors.New("不支持的模型: " + f.Model)
	}
	return nil
}

// NewKeyInput creates the masked API key input
func NewKeyInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "请输入API密钥"
	in.CharLimit = 512
	in.Width = 48
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Prompt = ""
	return in
}
