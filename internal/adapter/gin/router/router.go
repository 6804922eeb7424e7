package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-record-service/api"
	"user-record-service/internal/adapter/gin/handler"
	"user-record-service/internal/adapter/gin/middleware"
	"user-record-service/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
// *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options toggles optional surfaces of the router.
type Options struct {
	ServiceName    string
	SwaggerEnabled bool
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	db Pinger,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestIDMiddleware())
	router.Use(middleware.Logger(log))
	router.Use(rateLimiter.Middleware())

	router.GET("/health", healthHandler(db, opts.ServiceName, log))

	apiGroup := router.Group("/api")
	{
		users := apiGroup.Group("/users")
		{
			users.GET("/", userHandler.ListUsers)
			users.POST("/", userHandler.CreateUser)
			users.PUT("/", userHandler.UpdateUserEmail)
		}

		single := apiGroup.Group("/user")
		{
			single.GET("/:id", userHandler.GetUser)
			single.PATCH("/:id", userHandler.UpdateUser)
			single.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	if opts.SwaggerEnabled {
		router.GET("/swagger/*any", swaggerHandler())
	}

	return router
}

func healthHandler(db Pinger, serviceName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				logger.WithContext(c.Request.Context(), log).Error("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": serviceName,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	}
}

// swaggerHandler serves the embedded OpenAPI document at /swagger/doc.json
// and the Swagger UI for every other path under /swagger/.
func swaggerHandler() gin.HandlerFunc {
	ui := httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))

	return func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", api.OpenAPISpec)
			return
		}
		ui(c.Writer, c.Request)
	}
}
