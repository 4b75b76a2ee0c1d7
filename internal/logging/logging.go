// Package logging configures the process-wide slog logger.
//
// Two controls:
//   - Level: QT_LOG_LEVEL env or log.level config (ERROR, WARN, INFO, DEBUG)
//   - Categories: QT_DEBUG env or log.debug config, e.g. "providers,catalog" or "all"
//
// Library code logs through slog; the CLI keeps user-facing output on stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Debug categories
const (
	CategoryProviders = "providers"
	CategoryRouter    = "router"
	CategoryCatalog   = "catalog"
	CategoryCache     = "cache"
	CategoryServer    = "server"
)

var (
	mu         sync.RWMutex
	categories = parseCategories(os.Getenv("QT_DEBUG"))
)

// Init installs the default logger. Environment overrides config values.
func Init(w io.Writer, configLevel, configCategories string) *slog.Logger {
	cats := os.Getenv("QT_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	mu.Lock()
	categories = parseCategories(cats)
	mu.Unlock()

	level := os.Getenv("QT_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}
	if level == "" {
		level = "WARN"
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

// Enabled reports whether debug output is on for category
func Enabled(category string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categories["all"] || categories[category]
}

// For returns a logger tagged with category. Debug records are dropped
// unless the category is enabled.
func For(category string) *slog.Logger {
	return slog.New(&categoryHandler{category: category, next: slog.Default().Handler()}).
		With("component", category)
}

// ParseLevel converts a level string to a slog.Level
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING", "":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
			m[c] = true
		}
	}
	return m
}
