// Package router dispatches translation requests to the provider adapter
// selected by the model id prefix.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"quicktranslate/internal/cache"
	"quicktranslate/internal/observability"
	"quicktranslate/internal/providers"
)

// Router resolves model ids and delegates to registered adapters
type Router struct {
	registry *providers.Registry
	cache    cache.Cache
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Router
type Option func(*Router)

// WithCache serves repeated translations from c for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Router) {
		r.cache = c
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock sets the time source used for cache expiry
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// DefaultCacheTTL applies when WithCache is given no TTL
const DefaultCacheTTL = 7 * 24 * time.Hour

// New creates a Router dispatching through registry
func New(registry *providers.Registry, opts ...Option) *Router {
	r := &Router{
		registry: registry,
		ttl:      DefaultCacheTTL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveProvider returns the provider kind for modelID
func (r *Router) ResolveProvider(modelID string) (providers.Kind, error) {
	return providers.ResolveKind(modelID)
}

// TranslateText resolves the adapter for req.ModelID and performs the translation.
// Adapter failures are returned unchanged as *providers.TranslationError.
func (r *Router) TranslateText(ctx context.Context, req providers.TranslationRequest) (*providers.TranslationResponse, error) {
	kind, err := r.ResolveProvider(req.ModelID)
	if err != nil {
		return nil, err
	}
	adapter, err := r.registry.Get(kind)
	if err != nil {
		return nil, err
	}

	key := cache.Fingerprint(req.Text, req.SourceLanguage, req.TargetLanguage, req.ModelID)
	if cached := r.lookup(ctx, key); cached != nil {
		observability.TranslationsTotal.WithLabelValues(string(kind), "cache_hit").Inc()
		return cached, nil
	}

	start := time.Now()
	resp, err := adapter.Translate(ctx, req)
	observability.ProviderLatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.TranslationsTotal.WithLabelValues(string(kind), outcome(err)).Inc()
		r.logger.Debug("translation failed", "provider", kind, "model", req.ModelID, "error", err)
		return nil, err
	}
	observability.TranslationsTotal.WithLabelValues(string(kind), "ok").Inc()

	r.store(ctx, key, resp)
	return resp, nil
}

// TestConnection probes the provider of modelID with apiKey.
// Any failure, including an unknown model id, yields false.
func (r *Router) TestConnection(ctx context.Context, modelID, apiKey string) (ok bool) {
	kind, err := r.ResolveProvider(modelID)
	if err != nil {
		r.logger.Debug("connection test for unrecognized model", "model", modelID)
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("connection test panicked", "provider", kind, "panic", rec)
			ok = false
		}
		observability.ConnectionTestsTotal.WithLabelValues(string(kind), strconv.FormatBool(ok)).Inc()
	}()

	adapter, err := r.registry.Get(kind)
	if err != nil {
		return false
	}
	return adapter.TestConnection(ctx, apiKey)
}

func (r *Router) lookup(ctx context.Context, key string) *providers.TranslationResponse {
	if r.cache == nil {
		return nil
	}
	item, err := r.cache.Get(ctx, key, r.now())
	if err != nil {
		observability.CacheLookupsTotal.WithLabelValues("error").Inc()
		r.logger.Warn("translation cache lookup failed", "error", err)
		return nil
	}
	if item == nil {
		observability.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}
	var resp providers.TranslationResponse
	if err := json.Unmarshal(item.Value, &resp); err != nil {
		observability.CacheLookupsTotal.WithLabelValues("error").Inc()
		r.logger.Warn("translation cache entry is malformed", "error", err)
		return nil
	}
	observability.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return &resp
}

func (r *Router) store(ctx context.Context, key string, resp *providers.TranslationResponse) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		r.logger.Warn("failed to encode translation for cache", "error", err)
		return
	}
	now := r.now()
	if err := r.cache.Put(ctx, cache.Item{
		Key:       key,
		Value:     data,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}); err != nil {
		r.logger.Warn("failed to cache translation", "error", err)
	}
}

func outcome(err error) string {
	var te *providers.TranslationError
	if errors.As(err, &te) {
		return string(te.Kind)
	}
	return string(providers.ErrorUnknown)
}
