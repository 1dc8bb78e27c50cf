// Package cli implements the ssy subcommands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/config"
	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/logger"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/services"
)

// bootstrap loads config, installs the logger and opens the database.
func bootstrap(mode string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if mode != "" {
		cfg.Server.Mode = mode
	}

	log, err := logger.Init(cfg.Logger, cfg.Server.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	gin.SetMode(cfg.Server.Mode)

	if err := database.Connect(cfg.Database, logger.ParseLevel(cfg.Logger.Level)); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, log, nil
}

func newAuthService(cfg *config.Config) *services.AuthService {
	db := database.GetDB()
	return services.NewAuthService(
		database.NewTransactionManager(db),
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewAuditRepository(db),
		cfg.Auth.BcryptCost,
		cfg.Session.TTL(),
	)
}
