package routes

import (
	"net/http"

	"clipstream_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты приложения.
// guard и optionalGuard - собранные в app Access Guard middleware.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guard gin.HandlerFunc,
	optionalGuard gin.HandlerFunc,
) {
	ginRouter.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.Auth.RegisterRoutes(api, guard)
		appHandlers.User.RegisterRoutes(api, guard, optionalGuard)
	}

	appHandlers.File.RegisterRoutes(ginRouter)
}
