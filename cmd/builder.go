package cmd

import (
	"fmt"
	"net/http"

	"ordersvc/api"
	"ordersvc/api/health"
	apiitem "ordersvc/api/item"
	apiorder "ordersvc/api/order"
	catalogapp "ordersvc/application/catalog"
	orderapp "ordersvc/application/order"
	"ordersvc/config"
	"ordersvc/domain/catalog"
	"ordersvc/pkg/logger"

	"go.uber.org/zap"
)

// AppBuilder builds an App; tests inject their own Infrastructure.
type AppBuilder struct {
	cfg   *config.Config
	infra *Infrastructure
}

func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithInfrastructure skips opening connections from the configuration.
func (b *AppBuilder) WithInfrastructure(infra *Infrastructure) *AppBuilder {
	b.infra = infra
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env),
		zap.String("database", b.cfg.Database.Type))

	infra := b.infra
	if infra == nil {
		var err error
		if infra, err = NewInfrastructure(b.cfg); err != nil {
			return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
		}
	}

	var runners []Runner
	if b.cfg.Worker.Embedded {
		var err error
		if runners, err = NewRunners(b.cfg, infra); err != nil {
			infra.Close()
			return nil, fmt.Errorf("failed to initialize background runners: %w", err)
		}
	}

	orderService := orderapp.NewApplicationService(infra.OrderRepo, catalog.RepositoryLookup{Repo: infra.ItemRepo}, infra.UoWFactory)
	itemService := catalogapp.NewApplicationService(infra.ItemRepo, infra.UoWFactory)

	router := api.NewRouter(b.cfg,
		health.NewController(b.cfg, infra.HealthChecks()),
		apiorder.NewController(orderService),
		apiitem.NewController(itemService),
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config:  b.cfg,
		router:  router,
		server:  server,
		infra:   infra,
		runners: runners,
	}, nil
}
