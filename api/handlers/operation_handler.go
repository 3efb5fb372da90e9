package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freedl-go/internal/domain"
	"go.uber.org/zap"
)

// OperationHandler serves the operation history
type OperationHandler struct {
	history domain.OperationRepository
	logger  *zap.Logger
}

// NewOperationHandler creates a new operation handler. A nil history
// answers every request with 503.
func NewOperationHandler(history domain.OperationRepository, logger *zap.Logger) *OperationHandler {
	return &OperationHandler{
		history: history,
		logger:  logger,
	}
}

func (h *OperationHandler) available(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "operation history disabled"})
		return false
	}
	return true
}

// ListOperations handles GET /api/v1/operations
func (h *OperationHandler) ListOperations(c *gin.Context) {
	if !h.available(c) {
		return
	}

	filter := domain.OperationFilter{
		Kind:   domain.OperationKind(c.Query("kind")),
		Status: domain.OperationStatus(c.Query("status")),
		URL:    c.Query("url"),
	}
	if filter.Kind != "" && !domain.ValidateKind(filter.Kind) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid kind: " + string(filter.Kind), Kind: domain.KindInvalidInput})
		return
	}
	if filter.Status != "" && !domain.ValidateStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status: " + string(filter.Status), Kind: domain.KindInvalidInput})
		return
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit: " + limit, Kind: domain.KindInvalidInput})
			return
		}
		filter.Limit = n
	}

	ops, err := h.history.FindAll(filter)
	if err != nil {
		h.logger.Error("Failed to list operations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ops)
}

// GetOperation handles GET /api/v1/operations/:id
func (h *OperationHandler) GetOperation(c *gin.Context) {
	if !h.available(c) {
		return
	}

	op, err := h.history.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOperationNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "operation not found"})
			return
		}
		h.logger.Error("Failed to get operation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, op)
}

// GetStats handles GET /api/v1/operations/stats
func (h *OperationHandler) GetStats(c *gin.Context) {
	if !h.available(c) {
		return
	}

	stats, err := h.history.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
