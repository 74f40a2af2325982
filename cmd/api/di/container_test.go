package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-dashboard/internal/config"
	"user-dashboard/internal/usecase/user"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DB: config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			Path:        filepath.Join(t.TempDir(), "users.db"),
			AutoMigrate: true,
		},
		App: config.AppConfig{
			HTTPPort:               "8080",
			ShutdownTimeoutSeconds: 5,
		},
		Logger: config.LoggerConfig{Level: "warn"},
	}
}

func TestNewContainer_WithoutRedis(t *testing.T) {
	c, err := NewContainer(testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.GinHandler)
	assert.NotNil(t, c.DashboardHandler)

	created, err := c.UserUC.CreateUser(context.Background(), user.CreateUserRequest{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
}

func TestNewContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Redis = config.RedisConfig{
		Enabled:  true,
		Host:     mr.Host(),
		Port:     mr.Port(),
		PoolSize: 2,
		CacheTTL: 60,
	}

	c, err := NewContainer(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })
	require.NotNil(t, c.RedisClient)

	ctx := context.Background()
	created, err := c.UserUC.CreateUser(ctx, user.CreateUserRequest{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = c.UserUC.GetUser(ctx, user.GetUserRequest{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:1"), "reads go through the cache")
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = "oracle"

	_, err := NewContainer(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "config validation failed")
}
