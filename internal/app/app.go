// Package app wires the read API together: storage layout, market-data
// service, HTTP handlers and health probes.
package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"coinpulse/config"
	"coinpulse/internal/api"
	"coinpulse/internal/service"
	"coinpulse/internal/store"
)

// InitializeApp builds the fully configured Gin router for api mode and a
// cleanup function for shutdown.
//
// The read API serves only what the sync pipeline has already written, so
// readiness is defined as the data directory being reachable.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	layout := store.NewLayout(cfg.Store.DataDir, cfg.Store.ProcessedDir, cfg.Store.CacheDir)
	if err := layout.EnsureDirs(); err != nil {
		return nil, nil, fmt.Errorf("prepare data directories: %w", err)
	}

	svc := service.NewMarketDataService(layout)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(func() error {
		_, err := os.Stat(layout.DataDir)
		return err
	})
	healthHandler.Register(router)

	// No persistent connections to release; kept for symmetry with callers
	// expecting a shutdown hook.
	cleanup := func() {}

	return router, cleanup, nil
}
