package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

// VaultConfig configures the Key Vault store
type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// VaultStore reads secrets from Azure Key Vault through DefaultAzureCredential
// (environment credentials, managed identity or the Azure CLI login).
type VaultStore struct {
	client   *azsecrets.Client
	logger   *zap.Logger
	cacheTTL time.Duration
	cacheOn  bool

	mu    sync.Mutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// NewVaultStore connects to the named vault
func NewVaultStore(cfg VaultConfig, logger *zap.Logger) (*VaultStore, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	logger.Info("key vault store ready", zap.String("vault_url", vaultURL), zap.Bool("cache_enabled", cfg.CacheEnabled))
	return &VaultStore{
		client:   client,
		logger:   logger,
		cacheTTL: ttl,
		cacheOn:  cfg.CacheEnabled,
		cache:    make(map[string]cachedSecret),
	}, nil
}

// GetSecret fetches the latest version of a secret
func (v *VaultStore) GetSecret(ctx context.Context, name string) (string, error) {
	if v.cacheOn {
		v.mu.Lock()
		c, ok := v.cache[name]
		v.mu.Unlock()
		if ok && time.Now().Before(c.expiresAt) {
			return c.value, nil
		}
	}

	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("%w: %s has no value", ErrSecretNotFound, name)
	}

	if v.cacheOn {
		v.mu.Lock()
		v.cache[name] = cachedSecret{value: *resp.Value, expiresAt: time.Now().Add(v.cacheTTL)}
		v.mu.Unlock()
	}
	return *resp.Value, nil
}
