package server

import (
	"errors"
	"net/http"
	"strings"

	"quicktranslate/config/validation"
	"quicktranslate/internal/providers"
	"quicktranslate/internal/utils"

	"github.com/gin-gonic/gin"
)

// Error codes beyond the translation error kinds
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnrecognizedProvider = "UNRECOGNIZED_PROVIDER"
	CodeUnsupportedProvider  = "UNSUPPORTED_PROVIDER"
	CodeStorage              = "STORAGE_ERROR"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(c *gin.Context, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	c.AbortWithStatusJSON(status, body)
}

// statusFor maps a translation error kind to an HTTP status
func statusFor(kind providers.ErrorKind) int {
	switch kind {
	case providers.ErrorInvalidAPIKey:
		return http.StatusUnauthorized
	case providers.ErrorRateLimit:
		return http.StatusTooManyRequests
	case providers.ErrorQuotaExceeded:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeTranslateError(c *gin.Context, err error) {
	var te *providers.TranslationError
	switch {
	case errors.As(err, &te):
		writeError(c, statusFor(te.Kind), string(te.Kind), te.Message)
	case errors.Is(err, providers.ErrUnrecognizedProvider):
		writeError(c, http.StatusBadRequest, CodeUnrecognizedProvider, err.Error())
	case errors.Is(err, providers.ErrUnsupportedProvider):
		writeError(c, http.StatusBadRequest, CodeUnsupportedProvider, err.Error())
	default:
		writeError(c, http.StatusBadGateway, string(providers.ErrorUnknown), err.Error())
	}
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req providers.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	iv := validation.NewInputValidator()
	if err := iv.ValidateText(req.Text); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	for _, lang := range []string{req.SourceLanguage, req.TargetLanguage} {
		if err := iv.ValidateLanguage(lang); err != nil {
			writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
			return
		}
	}

	if req.ModelID == "" {
		model, err := s.selectedModel()
		if err != nil {
			writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
			return
		}
		req.ModelID = model
	}
	if req.APIKey == "" {
		key, ok, err := s.prefs.LoadKey()
		if err != nil {
			writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
			return
		}
		if !ok || key == "" {
			writeError(c, http.StatusUnauthorized, string(providers.ErrorInvalidAPIKey), "API key is not set")
			return
		}
		req.APIKey = key
	}

	resp, err := s.translator.TranslateText(c.Request.Context(), req)
	if err != nil {
		s.logger.Debug("translate failed", "model", req.ModelID, "error", err)
		s.writeTranslateError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type testConnectionRequest struct {
	Model  string `json:"model"`
	APIKey string `json:"apiKey"`
}

func (s *Server) handleTestConnection(c *gin.Context) {
	var req testConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Model == "" {
		model, err := s.selectedModel()
		if err != nil {
			writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
			return
		}
		req.Model = model
	}
	if req.APIKey == "" {
		key, _, err := s.prefs.LoadKey()
		if err != nil {
			writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
			return
		}
		req.APIKey = key
	}

	ok := req.APIKey != "" && s.translator.TestConnection(c.Request.Context(), req.Model, req.APIKey)
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

type settingsResponse struct {
	APIKey        string `json:"apiKey"`
	HasAPIKey     bool   `json:"hasApiKey"`
	SelectedModel string `json:"selectedModel"`
}

func (s *Server) handleGetSettings(c *gin.Context) {
	key, hasKey, err := s.prefs.LoadKey()
	if err != nil {
		writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
		return
	}
	model, err := s.selectedModel()
	if err != nil {
		writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
		return
	}

	resp := settingsResponse{HasAPIKey: hasKey, SelectedModel: model}
	if hasKey {
		resp.APIKey = utils.MaskAPIKey(key)
	}
	c.JSON(http.StatusOK, resp)
}

type updateSettingsRequest struct {
	APIKey        *string `json:"apiKey"`
	SelectedModel *string `json:"selectedModel"`
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	if req.SelectedModel != nil {
		if _, err := providers.ResolveKind(*req.SelectedModel); err != nil {
			writeError(c, http.StatusBadRequest, CodeUnrecognizedProvider, err.Error())
			return
		}
	}
	if req.APIKey != nil {
		key := strings.TrimSpace(*req.APIKey)
		if key != "" {
			if err := validation.NewInputValidator().ValidateAPIKey(key); err != nil {
				writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
				return
			}
		}
		*req.APIKey = key
	}

	if req.APIKey != nil {
		var err error
		if *req.APIKey == "" {
			err = s.prefs.ClearKey()
		} else {
			err = s.prefs.SaveKey(*req.APIKey)
		}
		if err != nil {
			writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
			return
		}
	}
	if req.SelectedModel != nil {
		if err := s.prefs.SaveModel(*req.SelectedModel); err != nil {
			writeError(c, http.StatusInternalServerError, CodeStorage, err.Error())
			return
		}
	}

	s.handleGetSettings(c)
}

func (s *Server) handleListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.catalog.GetModelConfigs(c.Request.Context())})
}

func (s *Server) handleRefreshModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.catalog.RefreshModelConfigs(c.Request.Context())})
}
