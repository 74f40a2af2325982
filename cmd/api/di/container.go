package di

import (
	"errors"
	"fmt"
	"time"

	"user-dashboard/cmd/api/infrastructure"
	"user-dashboard/internal/adapter/cache"
	"user-dashboard/internal/adapter/db/sqlstore"
	ginhandler "user-dashboard/internal/adapter/gin/handler"
	"user-dashboard/internal/adapter/repository/cached"
	"user-dashboard/internal/config"
	"user-dashboard/internal/dashboard"
	"user-dashboard/internal/usecase/user"
	redisclient "user-dashboard/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	DB               *gorm.DB
	RedisClient      *redisclient.Client
	UserUC           user.UserUsecase
	GinHandler       *ginhandler.UserHandler
	DashboardHandler *dashboard.Handler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Repository, with the cache in front when Redis is enabled
	var repo user.Repository = sqlstore.NewUserRepo(db, l)
	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(repo, userCache, l)
	}

	userUC := user.New(repo, l)

	dashboardClient := dashboard.NewClient(cfg.DashboardAPIURL(), nil)

	return &Container{
		Config:           cfg,
		Logger:           l,
		DB:               db,
		RedisClient:      rdb,
		UserUC:           userUC,
		GinHandler:       ginhandler.NewUserHandler(userUC, l),
		DashboardHandler: dashboard.NewHandler(dashboardClient, l),
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
