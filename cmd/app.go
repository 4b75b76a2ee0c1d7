package cmd

import (
	"fmt"

	"quicktranslate/config"
	"quicktranslate/config/storage"
	"quicktranslate/internal/cache"
	"quicktranslate/internal/crypto"
	"quicktranslate/internal/logging"
	"quicktranslate/internal/providers"
	"quicktranslate/internal/router"
)

// app wires the core components from Settings
type app struct {
	settings config.Settings
	store    *storage.FileStore
	prefs    *config.Preferences
	catalog  *config.Catalog
	registry *providers.Registry
	cache    *cache.SQLite
	router   *router.Router
}

type appOptions struct {
	noCache bool
}

func newApp(s config.Settings, opts appOptions) (*app, error) {
	store, err := storage.NewFileStore(s.StorePath())
	if err != nil {
		return nil, err
	}
	km, err := crypto.NewKeyManager(s.KeyFile())
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: s,
		store:    store,
		prefs:    config.NewPreferences(store, km),
		catalog: config.NewCatalog(store,
			config.WithRemoteURL(s.RemoteConfigURL),
			config.WithCatalogLogger(logging.For(logging.CategoryCatalog)),
		),
		registry: providers.NewDefaultRegistry(s.Endpoints,
			providers.WithLogger(logging.For(logging.CategoryProviders)),
		),
	}

	routerOpts := []router.Option{router.WithLogger(logging.For(logging.CategoryRouter))}
	if s.CacheEnabled && !opts.noCache {
		c, err := cache.Open(s.CachePath(), cache.WithLogger(logging.For(logging.CategoryCache)))
		if err != nil {
			// translating still works without the cache
			logging.For(logging.CategoryCache).Warn("translation cache unavailable", "path", s.CachePath(), "error", err)
		} else {
			a.cache = c
			routerOpts = append(routerOpts, router.WithCache(c, s.CacheTTL))
		}
	}
	a.router = router.New(a.registry, routerOpts...)
	return a, nil
}

// openCache opens the translation cache for maintenance commands
func (a *app) openCache() (*cache.SQLite, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	c, err := cache.Open(a.settings.CachePath(), cache.WithLogger(logging.For(logging.CategoryCache)))
	if err != nil {
		return nil, fmt.Errorf("failed to open translation cache: %w", err)
	}
	a.cache = c
	return c, nil
}

func (a *app) Close() error {
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}

// resolveModel returns the explicit model, else the saved one, else the default
func (a *app) resolveModel(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	model, ok, err := a.prefs.LoadModel()
	if err != nil {
		return "", err
	}
	if !ok || model == "" {
		return config.DefaultModelID, nil
	}
	return model, nil
}

// resolveKey returns the explicit key, else the saved one
func (a *app) resolveKey(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	key, ok, err := a.prefs.LoadKey()
	if err != nil {
		return "", err
	}
	if !ok || key == "" {
		return "", fmt.Errorf("API key is not set, run 'qt key set <key>' first")
	}
	return key, nil
}
