package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/actsync/pkg/cli/config"
	controller "github.com/m-mizutani/actsync/pkg/controller/http"
	"github.com/m-mizutani/actsync/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		storeCfg  config.Store
	)

	flags := append(serverCfg.Flags(), storeCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start a local catalog API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting actsync server",
				slog.Any("server", serverCfg),
				slog.String("db", storeCfg.DB),
			)

			repo, closeFn, err := storeCfg.Open()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					logger.Warn("Failed to close local catalog", slog.Any("error", err))
				}
			}()

			catalogUC := usecase.NewCatalog(repo)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				catalogUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithFunctionKey(serverCfg.FunctionKey),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
