// Package storage provides the key-value persistence used for preferences
// and the cached model catalog.
package storage

import "errors"

// ErrInvalidValue is returned when a value is not valid JSON
var ErrInvalidValue = errors.New("value is not valid JSON")

// Store is a flat key-value store of raw JSON values
type Store interface {
	// Get returns the raw JSON stored under key. ok is false when the key is unset.
	Get(key string) (raw []byte, ok bool, err error)
	// Set replaces the value stored under key
	Set(key string, raw []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
