package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freedl-go/internal/app"
	"github.com/yourusername/freedl-go/internal/domain"
	"go.uber.org/zap"
)

// DownloadHandler handles download requests
type DownloadHandler struct {
	session *app.Session
	logger  *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(session *app.Session, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		session: session,
		logger:  logger,
	}
}

// StartDownloadResponse identifies the submitted download
type StartDownloadResponse struct {
	OperationID string `json:"operation_id"`
}

// StartDownload handles POST /api/v1/downloads. The download runs in the
// background; its outcome is visible through the operations endpoints.
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req domain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: domain.KindInvalidInput})
		return
	}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		AbortWithOperationError(c, domain.AsOperationError(err))
		return
	}

	id := h.session.StartDownload(req, func(result domain.Result[domain.Unit]) {
		if !result.OK() {
			h.logger.Info("Download failed",
				zap.String("url", req.URL),
				zap.String("format_id", req.FormatID),
				zap.Error(result.Err()))
			return
		}
		h.logger.Info("Download finished",
			zap.String("url", req.URL),
			zap.String("format_id", req.FormatID))
	})

	c.JSON(http.StatusAccepted, StartDownloadResponse{OperationID: id})
}
