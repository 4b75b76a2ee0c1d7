package config

import (
	"encoding/json"
	"fmt"

	"quicktranslate/config/storage"
	"quicktranslate/internal/crypto"
)

// Preference keys
const (
	KeyAPIKey        = "apiKey"
	KeySelectedModel = "selectedModel"
)

// UserSettings is the pair of preferences the UI edits together
type UserSettings struct {
	APIKey        string `json:"apiKey"`
	SelectedModel string `json:"selectedModel"`
}

// Preferences persists the API key and selected model.
// Loads report ok=false for unset keys; storage failures are returned.
type Preferences struct {
	store storage.Store
	keys  *crypto.KeyManager
}

// NewPreferences creates Preferences over store. When km is non-nil the API
// key is encrypted at rest.
func NewPreferences(store storage.Store, km *crypto.KeyManager) *Preferences {
	return &Preferences{store: store, keys: km}
}

// SaveKey stores the API key
func (p *Preferences) SaveKey(key string) error {
	value := key
	if p.keys != nil {
		enc, err := p.keys.Encrypt(key)
		if err != nil {
			return fmt.Errorf("failed to encrypt API key: %w", err)
		}
		value = enc
	}
	if err := p.setString(KeyAPIKey, value); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	return nil
}

// LoadKey returns the stored API key
func (p *Preferences) LoadKey() (string, bool, error) {
	value, ok, err := p.getString(KeyAPIKey)
	if err != nil || !ok {
		return "", false, err
	}
	if p.keys != nil && crypto.IsEncrypted(value) {
		plain, err := p.keys.Decrypt(value)
		if err != nil {
			return "", false, fmt.Errorf("failed to decrypt API key: %w", err)
		}
		return plain, true, nil
	}
	return value, true, nil
}

// ClearKey removes the stored API key
func (p *Preferences) ClearKey() error {
	return p.store.Delete(KeyAPIKey)
}

// SaveModel stores the selected model id
func (p *Preferences) SaveModel(modelID string) error {
	if err := p.setString(KeySelectedModel, modelID); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	return nil
}

// LoadModel returns the selected model id
func (p *Preferences) LoadModel() (string, bool, error) {
	return p.getString(KeySelectedModel)
}

// LoadSettings loads both preferences. Unset values are empty.
func (p *Preferences) LoadSettings() (UserSettings, error) {
	key, _, err := p.LoadKey()
	if err != nil {
		return UserSettings{}, err
	}
	model, _, err := p.LoadModel()
	if err != nil {
		return UserSettings{}, err
	}
	return UserSettings{APIKey: key, SelectedModel: model}, nil
}

func (p *Preferences) setString(key, value string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.store.Set(key, data)
}

func (p *Preferences) getString(key string) (string, bool, error) {
	raw, ok, err := p.store.Get(key)
	if err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("stored %s is not a string: %w", key, err)
	}
	return value, true, nil
}
