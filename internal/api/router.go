package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justyntemme/bookdash/internal/auth"
)

// NewRouter wires the handlers into a gin engine
func NewRouter(handler *Handler, authenticator *auth.Authenticator) *gin.Engine {
	authHandler := NewAuthHandler(authenticator)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("", handler.APIInfo)
		apiGroup.POST("/auth/login", authHandler.Login)

		protected := apiGroup.Group("")
		protected.Use(authenticator.Middleware())
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)

			protected.GET("/dashboard", handler.GetDashboard)
			protected.PUT("/dashboard/page", handler.ChangePage)
			protected.PUT("/dashboard/page-size", handler.ChangePageSize)
			protected.POST("/dashboard/sort", handler.RequestSort)
			protected.GET("/dashboard/passes", handler.ListPasses)
		}
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
