package cmd

import (
	"bytes"
	"strings"
	"testing"

	"quicktranslate/config/models"
)

var selectionModels = []models.ModelConfig{
	{ID: "openai/gpt-4o-mini", Enabled: true},
	{ID: "anthropic/claude-3-haiku-20240307", Enabled: true},
	{ID: "openrouter/google/gemini-flash-1.5", Enabled: true},
}

func TestShouldPrompt_单模型不提示(t *testing.T) {
	ms := NewModelSelector(strings.NewReader(""), &bytes.Buffer{})

	if ms.ShouldPrompt(selectionModels[:1], "", false) {
		t.Error("Expected false for a single model")
	}
}

func TestShouldPrompt_指定模型参数不提示(t *testing.T) {
	ms := NewModelSelector(strings.NewReader(""), &bytes.Buffer{})

	if ms.ShouldPrompt(selectionModels, "openai/gpt-4o-mini", false) {
		t.Error("Expected false when a model argument is given")
	}
}

func TestShouldPrompt_显式禁用不提示(t *testing.T) {
	ms := NewModelSelector(strings.NewReader(""), &bytes.Buffer{})

	if ms.ShouldPrompt(selectionModels, "", true) {
		t.Error("Expected false when no-prompt is true")
	}
}

func TestShouldPrompt_CI环境不提示(t *testing.T) {
	t.Setenv("CI", "true")
	ms := NewModelSelector(strings.NewReader(""), &bytes.Buffer{})

	if ms.ShouldPrompt(selectionModels, "", false) {
		t.Error("Expected false in a CI environment")
	}
}

func TestPromptSimple(t *testing.T) {
	current := "openai/gpt-4o-mini"

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"有效输入", "2\n", "anthropic/claude-3-haiku-20240307", false},
		{"无换行的输入", "3", "openrouter/google/gemini-flash-1.5", false},
		{"空输入使用当前模型", "\n", current, false},
		{"非数字", "abc\n", "", true},
		{"超出范围", "4\n", "", true},
		{"零", "0\n", "", true},
		{"无输入", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ms := NewModelSelector(strings.NewReader(tt.input), &out)

			got, err := ms.PromptSimple(selectionModels, current)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PromptSimple() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PromptSimple() = %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), current+" (current)") {
				t.Errorf("prompt should mark the current model, got:\n%s", out.String())
			}
		})
	}
}

func TestValidateModelInList_有效模型(t *testing.T) {
	ms := NewModelSelector(strings.NewReader(""), &bytes.Buffer{})

	if err := ms.ValidateModelInList("anthropic/claude-3-haiku-20240307", selectionModels); err != nil {
		t.Errorf("Expected no error for valid model, got: %v", err)
	}
}

func TestValidateModelInList_无效模型(t *testing.T) {
	ms := NewModelSelector(strings.NewReader(""), &bytes.Buffer{})

	err := ms.ValidateModelInList("openai/invalid-model", selectionModels)
	if err == nil {
		t.Fatal("Expected error for invalid model, got none")
	}
	if !strings.Contains(err.Error(), "openai/invalid-model") {
		t.Errorf("Expected error to contain the model id, got: %v", err)
	}
}
