// Package tui provides the terminal settings form for quicktranslate
package tui

import (
	"context"
	"strings"
	"time"

	"quicktranslate/config"
	"quicktranslate/config/models"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SettingsStore loads and saves the user's preferences
type SettingsStore interface {
	LoadSettings() (config.UserSettings, error)
	SaveKey(key string) error
	SaveModel(modelID string) error
}

// ModelSource provides the model catalog
type ModelSource interface {
	GetModelConfigs(ctx context.Context) []models.ModelConfig
	RefreshModelConfigs(ctx context.Context) []models.ModelConfig
}

// ConnectionTester probes a provider
type ConnectionTester interface {
	TestConnection(ctx context.Context, modelID, apiKey string) bool
}

// ViewState represents the current view state
type ViewState int

const (
	ViewMain    ViewState = iota // Settings form
	ViewHelp                     // Help panel
	ViewTesting                  // Connection test in progress
)

// Focus is the form area receiving keys
type Focus int

const (
	FocusKey Focus = iota
	FocusModels
)

// Model is the core state model for TUI
type Model struct {
	store   SettingsStore
	catalog ModelSource
	tester  ConnectionTester
	keys    KeyMap

	viewState ViewState
	focus     Focus
	keyInput  textinput.Model

	models      []models.ModelConfig
	modelCursor int
	savedModel  string // selection loaded from the store, applied once the catalog arrives

	loading  bool
	message  string
	errorMsg string

	width  int
	height int

	modelScrollOffset int
}

// NewModel creates a new TUI model
func NewModel(store SettingsStore, catalog ModelSource, tester ConnectionTester) Model {
	in := NewKeyInput()
	in.Focus()
	return Model{
		store:     store,
		catalog:   catalog,
		tester:    tester,
		keys:      DefaultKeyMap(),
		viewState: ViewMain,
		focus:     FocusKey,
		keyInput:  in,
		loading:   true,
		width:     80,
		height:    24,
	}
}

// Init loads the stored settings and the model catalog
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadSettings(m.store), loadModels(m.catalog, false))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustModelScrollOffset()
		return m, nil

	case SettingsLoadedMsg:
		if msg.Err != nil {
			m.errorMsg = "加载设置失败: " + msg.Err.Error()
			return m, nil
		}
		m.keyInput.SetValue(msg.Settings.APIKey)
		m.savedModel = msg.Settings.SelectedModel
		m.selectModel(m.savedModel)
		return m, nil

	case ModelsLoadedMsg:
		m.loading = false
		current := m.savedModel
		if sel := m.SelectedModel(); sel != "" && msg.Refreshed {
			current = sel
		}
		m.models = config.FilterEnabled(msg.Models)
		m.modelCursor = 0
		m.selectModel(current)
		if msg.Refreshed {
			m.message = "模型列表已刷新"
		}
		return m, nil

	case SettingsSavedMsg:
		if msg.Err != nil {
			m.errorMsg = "保存失败: " + msg.Err.Error()
			return m, nil
		}
		m.savedModel = m.SelectedModel()
		m.message = "设置已保存"
		return m, nil

	case ConnectionTestedMsg:
		m.viewState = ViewMain
		if msg.Success {
			m.message = "连接成功 (" + msg.Duration.Round(time.Millisecond).String() + ")"
		} else {
			m.errorMsg = "连接失败"
		}
		return m, nil
	}

	if m.focus == FocusKey && m.viewState == ViewMain {
		var cmd tea.Cmd
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewState {
	case ViewTesting:
		// only quitting is possible while the probe runs
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case ViewHelp:
		if key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.Help) || msg.String() == "q" {
			m.viewState = ViewMain
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.viewState = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.toggleFocus()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.clearStatus()
		data := m.FormData()
		if err := data.Validate(); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		return m, saveSettings(m.store, data)

	case key.Matches(msg, m.keys.Test):
		m.clearStatus()
		data := m.FormData()
		if err := data.Validate(); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.viewState = ViewTesting
		return m, testConnection(m.tester, data)

	case key.Matches(msg, m.keys.Refresh):
		m.clearStatus()
		m.loading = true
		return m, loadModels(m.catalog, true)
	}

	if m.focus == FocusModels {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.moveUp()
		case key.Matches(msg, m.keys.Down):
			m.moveDown()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

// FormData returns the current form values
func (m Model) FormData() FormData {
	return FormData{
		APIKey: strings.TrimSpace(m.keyInput.Value()),
		Model:  m.SelectedModel(),
	}
}

// SelectedModel returns the id under the model cursor
func (m Model) SelectedModel() string {
	if m.modelCursor < 0 || m.modelCursor >= len(m.models) {
		return ""
	}
	return m.models[m.modelCursor].ID
}

func (m *Model) selectModel(id string) {
	for i, mc := range m.models {
		if mc.ID == id {
			m.modelCursor = i
			m.adjustModelScrollOffset()
			return
		}
	}
}

func (m *Model) toggleFocus() {
	if m.focus == FocusKey {
		m.focus = FocusModels
		m.keyInput.Blur()
		return
	}
	m.focus = FocusKey
	m.keyInput.Focus()
}

func (m *Model) clearStatus() {
	m.message = ""
	m.errorMsg = ""
}

func (m *Model) moveUp() {
	if m.modelCursor > 0 {
		m.modelCursor--
		m.adjustModelScrollOffset()
	}
}

func (m *Model) moveDown() {
	if m.modelCursor < len(m.models)-1 {
		m.modelCursor++
		m.adjustModelScrollOffset()
	}
}

// getVisibleModelListHeight returns how many models fit below the key input
func (m *Model) getVisibleModelListHeight() int {
	// title, separator, key label and input, model label, status and help lines
	const reserved = 12
	h := m.height - reserved
	if h < 3 {
		return 3
	}
	return h
}

// adjustModelScrollOffset keeps the cursor inside the visible window
func (m *Model) adjustModelScrollOffset() {
	visible := m.getVisibleModelListHeight()
	if m.modelCursor < m.modelScrollOffset {
		m.modelScrollOffset = m.modelCursor
	}
	if m.modelCursor >= m.modelScrollOffset+visible {
		m.modelScrollOffset = m.modelCursor - visible + 1
	}
	if limit := len(m.models) - visible; m.modelScrollOffset > limit {
		m.modelScrollOffset = limit
	}
	if m.modelScrollOffset < 0 {
		m.modelScrollOffset = 0
	}
}

// View renders the current view
func (m Model) View() string {
	switch m.viewState {
	case ViewHelp:
		return m.RenderHelpView()
	case ViewTesting:
		return m.RenderTestingView()
	default:
		return m.RenderMainView()
	}
}

func loadSettings(store SettingsStore) tea.Cmd {
	return func() tea.Msg {
		s, err := store.LoadSettings()
		return SettingsLoadedMsg{Settings: s, Err: err}
	}
}

func loadModels(catalog ModelSource, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if refresh {
			return ModelsLoadedMsg{Models: catalog.RefreshModelConfigs(ctx), Refreshed: true}
		}
		return ModelsLoadedMsg{Models: catalog.GetModelConfigs(ctx)}
	}
}

func saveSettings(store SettingsStore, data FormData) tea.Cmd {
	return func() tea.Msg {
		if err := store.SaveKey(data.APIKey); err != nil {
			return SettingsSavedMsg{Err: err}
		}
		return SettingsSavedMsg{Err: store.SaveModel(data.Model)}
	}
}

func testConnection(tester ConnectionTester, data FormData) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ok := tester.TestConnection(context.Background(), data.Model, data.APIKey)
		return ConnectionTestedMsg{Model: data.Model, Success: ok, Duration: time.Since(start)}
	}
}
