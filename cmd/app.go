package cmd

import (
	"context"
	"errors"
	"net/http"

	"ordersvc/api"
	"ordersvc/config"
	"ordersvc/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config  *config.Config
	router  *api.Router
	server  *http.Server
	infra   *Infrastructure
	runners []Runner
}

// Run serves HTTP, plus the embedded runners, until ctx is canceled, then
// drains in-flight requests within Server.ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.infra.Close(); err != nil {
			logger.Warn("Failed to close infrastructure", zap.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return a.server.Shutdown(shutdownCtx)
	})
	if len(a.runners) > 0 {
		g.Go(func() error {
			return RunAll(ctx, a.runners)
		})
	}

	err := g.Wait()
	logger.Info("Application stopped")
	return err
}

// GetServer returns the HTTP handler, for tests.
func (a *App) GetServer() *gin.Engine {
	return a.router.GetEngine()
}
