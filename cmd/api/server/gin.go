package server

import (
	"net/http"
	"time"

	ginhandler "user-dashboard/internal/adapter/gin/handler"
	ginrouter "user-dashboard/internal/adapter/gin/router"
	"user-dashboard/internal/dashboard"

	"go.uber.org/zap"
)

// SetupGinServer creates the HTTP server for the API and the dashboard.
func SetupGinServer(
	handler *ginhandler.UserHandler,
	dashboardHandler *dashboard.Handler,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, dashboardHandler, l)

	l.Info("Gin server configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
