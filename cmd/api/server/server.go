package server

import (
	"errors"
	"net/http"

	ginhandler "user-dashboard/internal/adapter/gin/handler"
	"user-dashboard/internal/config"
	"user-dashboard/internal/dashboard"

	"go.uber.org/zap"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, handler *ginhandler.UserHandler, dashboardHandler *dashboard.Handler) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		Gin:    SetupGinServer(handler, dashboardHandler, httpAddress(cfg), l),
	}
}

// Start serves HTTP until the server is shut down. A graceful shutdown
// returns nil.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running",
		zap.String("address", s.Gin.Addr),
		zap.String("swagger", "/swagger/index.html"),
	)

	if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
