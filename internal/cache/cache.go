// Package cache stores finished translations keyed by a fingerprint of their inputs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Item is one cached translation
type Item struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the item is no longer served at now
func (i *Item) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Cache is a TTL key-value store for translation results
type Cache interface {
	Get(ctx context.Context, key string, now time.Time) (*Item, error)
	Put(ctx context.Context, item Item) error
	Purge(ctx context.Context, now time.Time) (int64, error)
	Clear(ctx context.Context) error
	Close() error
}

// Fingerprint derives the cache key for a translation of text from one
// language to another with a given model
func Fingerprint(text, from, to, model string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{text, from, to, model}, "\x00")))
	return hex.EncodeToString(sum[:])
}
