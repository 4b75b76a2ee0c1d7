package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the settings form
func Run(store SettingsStore, catalog ModelSource, tester ConnectionTester) error {
	if !isTerminal() {
		return fmt.Errorf("qt settings requires a terminal. Use 'qt key set' and 'qt model use' instead")
	}

	p := tea.NewProgram(NewModel(store, catalog, tester), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
