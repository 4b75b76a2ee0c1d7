package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"quicktranslate/config/models"
	"quicktranslate/config/validation"
)

// ModelSelector handles interactive model selection
type ModelSelector struct {
	in  io.Reader
	out io.Writer
}

// NewModelSelector creates a ModelSelector reading answers from in and
// writing prompts to out
func NewModelSelector(in io.Reader, out io.Writer) *ModelSelector {
	return &ModelSelector{in: in, out: out}
}

// ShouldPrompt reports whether to ask the user to pick a model:
// no model argument was given, prompting is allowed, there is more than
// one model to choose from and stdin is interactive.
func (ms *ModelSelector) ShouldPrompt(list []models.ModelConfig, modelArg string, noPrompt bool) bool {
	if noPrompt || modelArg != "" {
		return false
	}
	if len(list) <= 1 {
		return false
	}
	return isInteractiveTerminal()
}

// PromptSimple prints a numbered list and returns the chosen model id.
// An empty answer keeps currentModel.
func (ms *ModelSelector) PromptSimple(list []models.ModelConfig, currentModel string) (string, error) {
	reader := bufio.NewReader(ms.in)

	fmt.Fprintln(ms.out, "📋 Available models:")
	for i, m := range list {
		line := fmt.Sprintf("  %2d. %s", i+1, m.ID)
		if m.ID == currentModel {
			line = fmt.Sprintf("  ➤ %2d. %s (current)", i+1, m.ID)
		}
		fmt.Fprintln(ms.out, line)
	}
	fmt.Fprintf(ms.out, "\nSelect model (1-%d) [Enter to keep '%s']: ", len(list), currentModel)

	input, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return currentModel, nil
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("invalid input, please enter a number between 1 and %d", len(list))
	}
	if n < 1 || n > len(list) {
		return "", fmt.Errorf("invalid selection, please enter a number between 1 and %d", len(list))
	}
	return list[n-1].ID, nil
}

// ValidateModelInList checks that model exists in list
func (ms *ModelSelector) ValidateModelInList(model string, list []models.ModelConfig) error {
	return validation.NewValidator().ValidateModelInList(model, list)
}

// isInteractiveTerminal checks if the current Stdin is an interactive terminal
func isInteractiveTerminal() bool {
	if isCIEnvironment() {
		return false
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// isCIEnvironment checks if we're running in a CI/CD environment
func isCIEnvironment() bool {
	ciVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"BUILD_NUMBER",
		"RUN_ID",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_HOME",
		"TRAVIS",
		"CIRCLECI",
		"TEAMCITY_VERSION",
	}
	for _, envVar := range ciVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}
