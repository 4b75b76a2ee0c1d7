package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// Default timeouts
const (
	DefaultTimeout      = 10 * time.Second
	DefaultProbeTimeout = 8 * time.Second
)

// client is the HTTP plumbing shared by the adapters
type client struct {
	http         *resty.Client
	baseURL      string
	timeout      time.Duration
	probeTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures an adapter
type Option func(*client)

// WithBaseURL overrides the provider base URL
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-call translation timeout
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProbeTimeout sets the connection test timeout
func WithProbeTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithHTTPClient uses hc as the underlying transport
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithClock sets the time source used for response timestamps
func WithClock(now func() time.Time) Option {
	return func(c *client) {
		c.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

func newClient(defaultBaseURL string, opts ...Option) *client {
	c := &client{
		baseURL:      defaultBaseURL,
		timeout:      DefaultTimeout,
		probeTimeout: DefaultProbeTimeout,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = resty.New()
	}
	// one request per call, never retried
	c.http.SetRetryCount(0)
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// post sends a JSON body and returns the raw 2xx response body.
// Every failure is converted into a *TranslationError.
func (c *client) post(ctx context.Context, kind Kind, path string, headers map[string]string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers).
		SetBody(body).
		Post(c.baseURL + path)
	if err != nil {
		c.logger.Debug("provider request failed", "provider", kind, "error", err)
		return nil, newTranslationError(kind, 0, transportDetail(err), err)
	}

	if !resp.IsSuccess() {
		detail := ExtractErrorMessage(resp.StatusCode(), resp.Body())
		c.logger.Debug("provider returned error", "provider", kind, "status", resp.StatusCode(), "message", detail)
		return nil, newTranslationError(kind, resp.StatusCode(), detail, fmt.Errorf("HTTP %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}

// probe issues a single request and reports whether it returned 2xx
func (c *client) probe(ctx context.Context, kind Kind, method, path string, headers map[string]string, body any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("connection test panicked", "provider", kind, "panic", r)
			ok = false
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req := c.http.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		c.logger.Debug("connection test failed", "provider", kind, "error", err)
		return false
	}
	return resp.IsSuccess()
}

// result extracts the completion text at path from a response body
func (c *client) result(kind Kind, body []byte, path string, req TranslationRequest) (*TranslationResponse, error) {
	text := strings.TrimSpace(gjson.GetBytes(body, path).String())
	if text == "" {
		return nil, &TranslationError{
			Kind:     ErrorUnknown,
			Message:  MsgEmptyResponse,
			Provider: kind,
			Status:   http.StatusOK,
		}
	}
	return &TranslationResponse{
		TranslatedText: text,
		OriginalText:   req.Text,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		ModelID:        req.ModelID,
		Timestamp:      c.now().UnixMilli(),
	}, nil
}

// ExtractErrorMessage reads error.message from a provider error body,
// falling back to "HTTP <status>".
func ExtractErrorMessage(status int, body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	return fmt.Sprintf("HTTP %d", status)
}

// transportDetail strips the request URL so classification only sees the failure itself
func transportDetail(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}
