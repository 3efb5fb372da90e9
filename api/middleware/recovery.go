package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freedl-go/api/handlers"
	"github.com/yourusername/freedl-go/internal/domain"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into an ErrorResponse. A panic carrying
// an *domain.OperationError keeps its kind and status; anything else is
// reported as an internal error.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}

			opErr := recoveredError(p)
			log.Error("Handler panicked",
				zap.Any("panic", p),
				zap.String("kind", string(opErr.Kind)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Stack("stack"),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			handlers.AbortWithOperationError(c, opErr)
		}()
		c.Next()
	}
}

func recoveredError(p any) *domain.OperationError {
	if err, ok := p.(error); ok {
		var opErr *domain.OperationError
		if errors.As(err, &opErr) {
			return opErr
		}
	}
	return &domain.OperationError{Kind: handlers.KindInternal, Message: "Internal server error"}
}
