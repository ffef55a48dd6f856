package secrets

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// VaultConfig contains configuration for the HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.internal:8200")
	Address string

	// Token authentication; other auth methods are provisioned outside
	// this service
	Token string

	// KV v2 secrets engine mount path (default: "secret")
	MountPath string

	CacheTTL    time.Duration
	EnableCache bool
}

// DefaultVaultConfig returns default configuration
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		MountPath:   "secret",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

type vaultAdapter struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultManager creates a Vault backed secret manager
func NewVaultManager(cfg *VaultConfig, logger *zap.Logger) (Manager, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("mount_path", cfg.MountPath),
	)

	return &vaultAdapter{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// GetSecret reads a KV v2 secret; the secret's "value" field is returned
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	kv := a.client.KVv2(a.config.MountPath)
	secretData, err := kv.Get(ctx, path)
	if err != nil {
		a.logger.Error("failed to read secret from Vault", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	value, ok := secretData.Data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("secret %s has no string field %q", path, "value")
	}

	secret := &Secret{
		Value:   value,
		Version: fmt.Sprintf("v%d", secretData.VersionMetadata.Version),
	}
	if !secretData.VersionMetadata.CreatedTime.IsZero() {
		secret.CreatedAt = secretData.VersionMetadata.CreatedTime.Format(time.RFC3339)
	}

	a.cache.put(path, secret)
	return secret, nil
}
