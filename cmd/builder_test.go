package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ordersvc/config"
	rediscache "ordersvc/infrastructure/cache/redis"
	"ordersvc/infrastructure/persistence/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.App.Env = "test"
	return cfg
}

func TestNewInfrastructure_InMemory(t *testing.T) {
	infra, err := NewInfrastructure(loadConfig(t))
	require.NoError(t, err)
	defer infra.Close()

	assert.IsType(t, &mocks.MockItemRepository{}, infra.ItemRepo)
	assert.IsType(t, &mocks.MockOrderRepository{}, infra.OrderRepo)
	assert.Nil(t, infra.Outbox)
	assert.Empty(t, infra.HealthChecks())
}

func TestNewInfrastructure_UnknownDatabase(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Database.Type = "oracle"
	_, err := NewInfrastructure(cfg)
	assert.ErrorContains(t, err, "oracle")
}

func TestNewInfrastructure_RedisCache(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"

	infra, err := NewInfrastructure(cfg)
	require.NoError(t, err)
	defer infra.Close()

	assert.IsType(t, &rediscache.CachedItemRepository{}, infra.ItemRepo)
	check, ok := infra.HealthChecks()["redis"]
	require.True(t, ok)
	assert.Error(t, check(context.Background()))
}

func TestNewRunners_InMemoryWithoutKafka(t *testing.T) {
	cfg := loadConfig(t)
	infra, err := NewInfrastructure(cfg)
	require.NoError(t, err)

	runners, err := NewRunners(cfg, infra)
	require.NoError(t, err)
	assert.Empty(t, runners)

	cfg.Worker.Enabled = false
	runners, err = NewRunners(cfg, infra)
	require.NoError(t, err)
	assert.Empty(t, runners)
}

func TestRunAll_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	runners := []Runner{{Name: "idle", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}}}

	done := make(chan error, 1)
	go func() { done <- RunAll(ctx, runners) }()
	<-started
	cancel()
	assert.NoError(t, <-done)
}

func TestBuild_ServesHealth(t *testing.T) {
	app, err := NewBuilder(loadConfig(t)).Build()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.GetServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
