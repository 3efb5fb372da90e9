package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freedl-go/internal/domain"
)

// KindInternal marks failures that are not an operation outcome, such as
// a recovered handler panic
const KindInternal domain.ErrorKind = "internal"

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string           `json:"error"`
	Kind  domain.ErrorKind `json:"kind,omitempty"`
}

// statusForKind maps an operation failure to an HTTP status
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindBackendError:
		return http.StatusBadGateway
	case domain.KindCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithOperationError ends the request with the status and body for err
func AbortWithOperationError(c *gin.Context, err *domain.OperationError) {
	c.AbortWithStatusJSON(statusForKind(err.Kind), ErrorResponse{
		Error: err.Message,
		Kind:  err.Kind,
	})
}
