package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freedl-go/internal/app"
	"github.com/yourusername/freedl-go/internal/domain"
	"go.uber.org/zap"
)

// FormatHandler handles format resolution requests
type FormatHandler struct {
	session *app.Session
	logger  *zap.Logger
}

// NewFormatHandler creates a new format handler
func NewFormatHandler(session *app.Session, logger *zap.Logger) *FormatHandler {
	return &FormatHandler{
		session: session,
		logger:  logger,
	}
}

// ResolveRequest represents a request to list formats
type ResolveRequest struct {
	URL string `json:"url"`
}

// ResolveResponse lists the formats offered for a URL
type ResolveResponse struct {
	URL     string            `json:"url"`
	Info    *domain.VideoInfo `json:"info,omitempty"`
	Formats []domain.Format   `json:"formats"`
	Default *domain.Format    `json:"default"`
}

// Resolve handles POST /api/v1/formats
func (h *FormatHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: domain.KindInvalidInput})
		return
	}

	result := app.Await(func(done func(domain.Result[domain.Resolution])) {
		h.session.Inspect(req.URL, done)
	})
	if !result.OK() {
		h.logger.Debug("Format resolution failed",
			zap.String("url", req.URL),
			zap.Error(result.Err()))
		AbortWithOperationError(c, result.Err())
		return
	}

	formats := result.Value().Formats
	response := ResolveResponse{
		URL:     strings.TrimSpace(req.URL),
		Info:    result.Value().Info,
		Formats: formats,
	}
	if len(formats) > 0 {
		response.Default = &formats[0]
	}
	c.JSON(http.StatusOK, response)
}
