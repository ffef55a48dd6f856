package main

import (
	"context"

	"github.com/tourvia/commission-service/internal/adapters/secrets"
	"github.com/tourvia/commission-service/internal/config"
	"go.uber.org/zap"
)

// resolveSecrets fills in the DB password and JWT secret from the configured
// secrets provider. The env provider is a no-op: config already carries the
// values.
func resolveSecrets(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var manager secrets.Manager
	var err error

	switch cfg.Secrets.Provider {
	case "env", "":
		return nil
	case "aws":
		manager, err = secrets.NewAWSManager(ctx, secrets.DefaultAWSConfig(cfg.Secrets.AWSRegion), logger)
	case "vault":
		manager, err = secrets.NewVaultManager(secrets.DefaultVaultConfig(cfg.Secrets.VaultAddr), logger)
	case "file":
		manager = secrets.NewLocalManager(cfg.Secrets.FilePath, logger)
	default:
		logger.Warn("unknown secrets provider, falling back to env",
			zap.String("provider", cfg.Secrets.Provider))
		return nil
	}
	if err != nil {
		return err
	}

	if cfg.Database.Password == "" {
		secret, err := manager.GetSecret(ctx, cfg.Secrets.DBSecretKey)
		if err != nil {
			return err
		}
		cfg.Database.Password = secret.Value
	}
	if cfg.Auth.JWTSecret == "" {
		secret, err := manager.GetSecret(ctx, cfg.Secrets.JWTSecretKey)
		if err != nil {
			return err
		}
		cfg.Auth.JWTSecret = secret.Value
	}
	return nil
}
