// Package validation checks catalog entries and user input before they are persisted or sent.
package validation

import (
	"fmt"
	"strings"

	"quicktranslate/config/models"
	"quicktranslate/internal/providers"
)

// Validator validates model catalog entries
type Validator struct{}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateModel checks a single catalog entry. The id prefix must name the
// declared provider.
func (v *Validator) ValidateModel(m models.ModelConfig) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("model id cannot be empty")
	}
	kind, err := providers.ResolveKind(m.ID)
	if err != nil {
		return err
	}
	if m.Provider != "" && m.Provider != string(kind) {
		return fmt.Errorf("model %s declares provider %q but its id prefix is %q", m.ID, m.Provider, kind)
	}
	if m.MaxTokens != nil && *m.MaxTokens <= 0 {
		return fmt.Errorf("model %s: maxTokens must be positive", m.ID)
	}
	if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
		return fmt.Errorf("model %s: temperature must be between 0 and 2", m.ID)
	}
	return nil
}

// FilterValid returns the usable entries of list and the errors of the rest.
// Duplicate ids keep their first occurrence.
func (v *Validator) FilterValid(list []models.ModelConfig) ([]models.ModelConfig, []error) {
	seen := make(map[string]bool, len(list))
	out := make([]models.ModelConfig, 0, len(list))
	var errs []error
	for _, m := range list {
		if err := v.ValidateModel(m); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("duplicate model id %s", m.ID))
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out, errs
}

// ValidateModelInList checks that id is one of the catalog entries
func (v *Validator) ValidateModelInList(id string, list []models.ModelConfig) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("model id cannot be empty")
	}
	ids := make([]string, 0, len(list))
	for _, m := range list {
		if m.ID == id {
			return nil
		}
		ids = append(ids, m.ID)
	}
	return fmt.Errorf("model '%s' is not in the model catalog: %v", id, ids)
}
