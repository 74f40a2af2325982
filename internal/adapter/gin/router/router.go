package router

import (
	"net/http"

	"user-dashboard/api/swagger"
	"user-dashboard/internal/adapter/gin/handler"
	"user-dashboard/internal/adapter/gin/middleware"
	"user-dashboard/internal/dashboard"
	"user-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	dashboardHandler *dashboard.Handler,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.MethodNotAllowed)

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "user-dashboard",
		})
	})

	router.GET("/users", userHandler.ListUsers)
	router.POST("/users", userHandler.CreateUser)
	router.GET("/users/:id", userHandler.GetUser)
	router.PUT("/users/:id", userHandler.UpdateUser)
	router.DELETE("/users/:id", userHandler.DeleteUser)

	// API docs
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", swagger.UsersJSON)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/openapi.json"),
	)))

	router.SetHTMLTemplate(dashboard.Templates())
	dashboardHandler.Register(router)

	return router
}
