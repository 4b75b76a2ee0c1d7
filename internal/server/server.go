// Package server exposes the translation commands over a local HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"quicktranslate/config"
	"quicktranslate/config/models"
	"quicktranslate/internal/providers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Translator is the dispatch surface the server drives
type Translator interface {
	TranslateText(ctx context.Context, req providers.TranslationRequest) (*providers.TranslationResponse, error)
	TestConnection(ctx context.Context, modelID, apiKey string) bool
}

// ModelCatalog lists the available models
type ModelCatalog interface {
	GetModelConfigs(ctx context.Context) []models.ModelConfig
	RefreshModelConfigs(ctx context.Context) []models.ModelConfig
}

// PreferenceStore holds the user's API key and selected model
type PreferenceStore interface {
	SaveKey(key string) error
	LoadKey() (string, bool, error)
	ClearKey() error
	SaveModel(modelID string) error
	LoadModel() (string, bool, error)
}

// Server serves the JSON API
type Server struct {
	translator Translator
	catalog    ModelCatalog
	prefs      PreferenceStore
	logger     *slog.Logger
	engine     *gin.Engine
}

// New builds a Server and its routes
func New(translator Translator, catalog ModelCatalog, prefs PreferenceStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		translator: translator,
		catalog:    catalog,
		prefs:      prefs,
		logger:     logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/translate", s.handleTranslate)
	v1.POST("/test-connection", s.handleTestConnection)
	v1.GET("/settings", s.handleGetSettings)
	v1.PUT("/settings", s.handleUpdateSettings)
	v1.GET("/models", s.handleListModels)
	v1.POST("/models/refresh", s.handleRefreshModels)
	return r
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					return
				}
				s.logger.Error("handler panicked", "panic", rec, "stack", string(debug.Stack()))
				writeError(c, http.StatusInternalServerError, string(providers.ErrorUnknown), "internal error")
			}
		}()
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// the default model applies when none has been selected yet
func (s *Server) selectedModel() (string, error) {
	model, ok, err := s.prefs.LoadModel()
	if err != nil {
		return "", err
	}
	if !ok || model == "" {
		return config.DefaultModelID, nil
	}
	return model, nil
}
