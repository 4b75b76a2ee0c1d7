package tui

import (
	"time"

	"quicktranslate/config"
	"quicktranslate/config/models"
)

// SettingsLoadedMsg is sent when the stored key and model are loaded
type SettingsLoadedMsg struct {
	Settings config.UserSettings
	Err      error
}

// ModelsLoadedMsg is sent when the model catalog is loaded
type ModelsLoadedMsg struct {
	Models    []models.ModelConfig
	Refreshed bool
}

// SettingsSavedMsg is sent when save completes
type SettingsSavedMsg struct {
	Err error
}

// ConnectionTestedMsg is sent when the connection test completes
type ConnectionTestedMsg struct {
	Model    string
	Success  bool
	Duration time.Duration
}
