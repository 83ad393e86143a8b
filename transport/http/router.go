package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/siwa/service"
)

// SetupRouter sets up the Gin router around the auth service.
func SetupRouter(authService *service.AuthService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/verify", handlers.Verify)
		auth.POST("/logout", handlers.Logout)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
		api.GET("/authorize", handlers.Authorize)
	}

	return router
}
