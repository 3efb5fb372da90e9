package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/freedl-go/api/handlers"
	"github.com/yourusername/freedl-go/api/middleware"
	"github.com/yourusername/freedl-go/internal/app"
	"github.com/yourusername/freedl-go/internal/domain"
)

// SetupRouter sets up the HTTP router. history may be nil when operation
// history is disabled.
func SetupRouter(session *app.Session, history domain.OperationRepository, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(session.Runner())
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		formatHandler := handlers.NewFormatHandler(session, log)
		v1.POST("/formats", formatHandler.Resolve)

		downloadHandler := handlers.NewDownloadHandler(session, log)
		v1.POST("/downloads", downloadHandler.StartDownload)

		operationHandler := handlers.NewOperationHandler(history, log)
		operations := v1.Group("/operations")
		{
			operations.GET("", operationHandler.ListOperations)
			operations.GET("/stats", operationHandler.GetStats)
			operations.GET("/:id", operationHandler.GetOperation)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Error: "not found"})
	})

	return router
}
