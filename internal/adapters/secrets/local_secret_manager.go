package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// localSecretManager implements Manager from the local filesystem.
// Development only; production wires AWS Secrets Manager or Vault.
type localSecretManager struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalManager creates a filesystem backed secret manager
func NewLocalManager(basePath string, logger *zap.Logger) Manager {
	return &localSecretManager{basePath: basePath, logger: logger}
}

// GetSecret reads a secret file, accepting plain text or JSON form
func (m *localSecretManager) GetSecret(_ context.Context, secretPath string) (*Secret, error) {
	filePath := filepath.Join(m.basePath, secretPath)

	m.logger.Debug("reading secret from filesystem", zap.String("path", secretPath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	var secretData struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
		return &Secret{
			Value:     secretData.Value,
			Version:   "v1",
			Metadata:  secretData.Tags,
			CreatedAt: secretData.CreatedAt,
		}, nil
	}

	return &Secret{Value: string(data), Version: "v1"}, nil
}
