package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinpulse/config"
	"coinpulse/internal/app"
	"coinpulse/internal/logger"
	"coinpulse/internal/pipeline"
)

// startServer starts the HTTP server on the given port in a goroutine and
// returns it for the shutdown path.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown blocks until SIGINT/SIGTERM, then drains the server and
// runs the cleanup callback.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the coinpulse entry point.
//
// Modes (selected via --mode flag):
//   - sync: runs one ingestion pass against the vendor API and exits.
//     Scheduling (e.g. daily cron) is external.
//   - api:  serves the persisted outputs over the read-only REST API.
//
// Flags:
//   - --mode: "sync" or "api". Default: "sync".
//   - --port: Port for api mode. Defaults to SERVER_PORT from config.
func main() {
	ctx := context.Background()

	config.LoadConfig()
	logger.Init()

	mode := flag.String("mode", "sync", "Mode: sync or api")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "sync":
		logger.L().Info().Msg("running sync")

		runner, err := pipeline.NewRunner(&config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("pipeline init error")
		}

		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runner.Run(runCtx); err != nil {
			logger.L().Fatal().Err(err).Msg("sync failed")
		}
		logger.L().Info().Msg("sync completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
