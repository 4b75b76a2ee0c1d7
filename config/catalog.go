package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"quicktranslate/config/models"
	"quicktranslate/config/storage"
	"quicktranslate/config/validation"
	"quicktranslate/internal/observability"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
)

const (
	// DefaultRemoteConfigURL hosts the published model catalog
	DefaultRemoteConfigURL = "https://raw.githubusercontent.com/iam189cm/quicktranslate-config/main/models.json"
	// RemoteConfigKey is the store key of the cached catalog record
	RemoteConfigKey = "qt_remote_config"
	// CatalogTTL is how long a fetched catalog is served without refetching
	CatalogTTL = 24 * time.Hour
	// DefaultFetchTimeout bounds a remote catalog fetch
	DefaultFetchTimeout = 10 * time.Second

	defaultCatalogVersion = "1.0.0"
)

// ErrInvalidCatalog is returned when the remote document has no models array
var ErrInvalidCatalog = errors.New("invalid model catalog format")

// Catalog resolves the list of available models: fresh cache, then remote,
// then stale cache, then the built-in defaults. It never fails.
type Catalog struct {
	store   storage.Store
	http    *resty.Client
	url     string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	now     func() time.Time
	logger  *slog.Logger
}

// CatalogOption configures a Catalog
type CatalogOption func(*Catalog)

// WithRemoteURL overrides the catalog URL
func WithRemoteURL(url string) CatalogOption {
	return func(c *Catalog) {
		if url != "" {
			c.url = url
		}
	}
}

// WithFetchTimeout overrides the fetch timeout
func WithFetchTimeout(d time.Duration) CatalogOption {
	return func(c *Catalog) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCatalogHTTPClient uses hc for remote fetches
func WithCatalogHTTPClient(hc *http.Client) CatalogOption {
	return func(c *Catalog) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithCatalogClock sets the time source used for expiry checks
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		c.now = now
	}
}

// WithCatalogLogger sets the logger
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithBreakerSettings replaces the circuit breaker guarding automatic fetches.
// A nil IsSuccessful defaults to ignoring caller cancellation.
func WithBreakerSettings(st gobreaker.Settings) CatalogOption {
	return func(c *Catalog) {
		if st.IsSuccessful == nil {
			st.IsSuccessful = fetchSucceeded
		}
		c.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

// fetchSucceeded keeps caller cancellation out of the breaker's failure counts
func fetchSucceeded(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// NewCatalog creates a Catalog caching into store
func NewCatalog(store storage.Store, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		store:   store,
		url:     DefaultRemoteConfigURL,
		timeout: DefaultFetchTimeout,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = resty.New()
	}
	c.http.SetRetryCount(0)
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "remote-catalog",
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: fetchSucceeded,
		})
	}
	return c
}

// IsExpired reports whether a catalog fetched at lastUpdated (Unix ms) is stale at now.
// A record is still fresh at exactly 24 hours.
func IsExpired(now time.Time, lastUpdated int64) bool {
	return now.UnixMilli()-lastUpdated > CatalogTTL.Milliseconds()
}

// GetModelConfigs returns the fresh cached catalog or fetches a new one
func (c *Catalog) GetModelConfigs(ctx context.Context) (list []models.ModelConfig) {
	defer c.recoverToDefaults(&list)

	cached := c.Cached()
	if cached != nil && !IsExpired(c.now(), cached.LastUpdated) {
		return cached.Models
	}
	return c.fetchOrFallback(ctx, cached, c.fetch)
}

// RefreshModelConfigs skips the freshness check and fetches immediately.
// An explicit refresh always reaches the network, even while the breaker is open.
func (c *Catalog) RefreshModelConfigs(ctx context.Context) (list []models.ModelConfig) {
	defer c.recoverToDefaults(&list)
	return c.fetchOrFallback(ctx, c.Cached(), c.fetchRemote)
}

// EnabledModels filters the catalog down to enabled entries
func (c *Catalog) EnabledModels(ctx context.Context) []models.ModelConfig {
	return FilterEnabled(c.GetModelConfigs(ctx))
}

// FilterEnabled returns the enabled entries of list, keeping their order
func FilterEnabled(list []models.ModelConfig) []models.ModelConfig {
	out := make([]models.ModelConfig, 0, len(list))
	for _, m := range list {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// FindModel looks up id in the current catalog
func (c *Catalog) FindModel(ctx context.Context, id string) (models.ModelConfig, bool) {
	for _, m := range c.GetModelConfigs(ctx) {
		if m.ID == id {
			return m, true
		}
	}
	return models.ModelConfig{}, false
}

// Cached returns the stored catalog record, or nil when absent or unreadable
func (c *Catalog) Cached() *models.RemoteModelConfig {
	raw, ok, err := c.store.Get(RemoteConfigKey)
	if err != nil {
		c.logger.Warn("failed to read cached model catalog", "error", err)
		return nil
	}
	if !ok || !gjson.GetBytes(raw, "models").IsArray() {
		return nil
	}
	var rc models.RemoteModelConfig
	if err := json.Unmarshal(raw, &rc); err != nil {
		c.logger.Warn("cached model catalog is malformed", "error", err)
		return nil
	}
	return &rc
}

func (c *Catalog) fetchOrFallback(ctx context.Context, cached *models.RemoteModelConfig,
	fetch func(context.Context) (*models.RemoteModelConfig, error)) []models.ModelConfig {
	remote, err := fetch(ctx)
	if err == nil {
		if err := c.persist(remote); err != nil {
			c.logger.Warn("failed to cache model catalog", "error", err)
		}
		observability.CatalogFetchesTotal.WithLabelValues("remote").Inc()
		return remote.Models
	}

	c.logger.Warn("remote model catalog unavailable", "url", c.url, "error", err)
	if cached != nil {
		observability.CatalogFetchesTotal.WithLabelValues("stale_cache").Inc()
		return cached.Models
	}
	observability.CatalogFetchesTotal.WithLabelValues("defaults").Inc()
	return DefaultModels()
}

// fetch runs fetchRemote through the circuit breaker
func (c *Catalog) fetch(ctx context.Context) (*models.RemoteModelConfig, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchRemote(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.RemoteModelConfig), nil
}

func (c *Catalog) fetchRemote(ctx context.Context) (*models.RemoteModelConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Cache-Control", "no-cache").
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model catalog: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to fetch model catalog: HTTP %d", resp.StatusCode())
	}

	body := resp.Body()
	if !gjson.GetBytes(body, "models").IsArray() {
		return nil, ErrInvalidCatalog
	}

	var doc struct {
		Models  []models.ModelConfig `json:"models"`
		Version string               `json:"version"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if doc.Version == "" {
		doc.Version = defaultCatalogVersion
	}
	if doc.Models == nil {
		doc.Models = []models.ModelConfig{}
	}
	if _, problems := validation.NewValidator().FilterValid(doc.Models); len(problems) > 0 {
		// entries are kept as published; the router rejects unusable ids at call time
		c.logger.Warn("remote model catalog has invalid entries", "count", len(problems), "first", problems[0])
	}

	return &models.RemoteModelConfig{
		Models:      doc.Models,
		LastUpdated: c.now().UnixMilli(),
		Version:     doc.Version,
	}, nil
}

// persist replaces the cached record wholesale
func (c *Catalog) persist(rc *models.RemoteModelConfig) error {
	data, err := json.Marshal(rc)
	if err != nil {
		return fmt.Errorf("failed to serialize model catalog: %w", err)
	}
	return c.store.Set(RemoteConfigKey, data)
}

func (c *Catalog) recoverToDefaults(list *[]models.ModelConfig) {
	if r := recover(); r != nil {
		c.logger.Error("model catalog lookup panicked", "panic", r)
		*list = DefaultModels()
	}
}
