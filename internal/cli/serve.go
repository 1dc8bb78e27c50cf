package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yukikurage/site-services-api/internal/app"
	"github.com/yukikurage/site-services-api/internal/database"
)

const shutdownTimeout = 30 * time.Second

func NewServeCommand() *cobra.Command {
	var (
		mode        string
		autoMigrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(mode, autoMigrate)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Gin mode (debug, release, test); overrides server.mode")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Run database migrations on startup")

	return cmd
}

func runServe(mode string, autoMigrate bool) error {
	cfg, log, err := bootstrap(mode)
	if err != nil {
		return err
	}

	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if autoMigrate {
		if err := database.Migrate(); err != nil {
			return err
		}
	}

	a, err := app.New(app.Options{
		Config: cfg,
		DB:     database.GetDB(),
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "address", cfg.Server.Addr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")

	// Closing the hub ends open event streams so Shutdown can drain.
	a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}

	log.Info("server exited")
	return nil
}
