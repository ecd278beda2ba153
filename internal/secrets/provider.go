// Package secrets resolves credentials from the environment or Azure Key Vault.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// ErrSecretNotFound is returned when a store has no value for a name
var ErrSecretNotFound = errors.New("secret not found")

// Source defines where secrets are loaded from
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceVault       Source = "vault"
	// SourceAuto picks environment in development and vault elsewhere
	SourceAuto Source = "auto"
)

// Store looks up a secret by name
type Store interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// EnvStore reads secrets from environment variables
type EnvStore struct{}

// GetSecret returns the environment variable called name
func (EnvStore) GetSecret(_ context.Context, name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: environment variable %s", ErrSecretNotFound, name)
}

// StaticStore serves secrets from a fixed map
type StaticStore map[string]string

// GetSecret returns the mapped value
func (s StaticStore) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}

// Config selects and configures the secret source
type Config struct {
	Source       Source
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ResolveSource turns SourceAuto into a concrete source for an environment
func ResolveSource(source Source, environment string) Source {
	if source != SourceAuto && source != "" {
		return source
	}
	switch environment {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// Provider reads secrets from its store, letting explicitly set environment
// variables override the store.
type Provider struct {
	source Source
	store  Store
	logger *zap.Logger
}

// NewProvider builds a provider for the configured source
func NewProvider(cfg Config, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)

	var store Store
	switch source {
	case SourceEnvironment:
		store = EnvStore{}
	case SourceVault:
		vault, err := NewVaultStore(VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault store: %w", err)
		}
		store = vault
	default:
		return nil, fmt.Errorf("unknown secret source: %s", source)
	}

	logger.Info("secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return &Provider{source: source, store: store, logger: logger}, nil
}

// NewProviderWithStore wraps an existing store
func NewProviderWithStore(source Source, store Store, logger *zap.Logger) *Provider {
	return &Provider{source: source, store: store, logger: logger}
}

// Source returns the resolved source
func (p *Provider) Source() Source {
	return p.source
}

// IsVaultEnabled reports whether secrets come from Key Vault
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}

// Lookup returns envName when it is set, otherwise secretName from the store
func (p *Provider) Lookup(ctx context.Context, secretName, envName string) (string, error) {
	if envName != "" {
		if v := os.Getenv(envName); v != "" {
			p.logger.Debug("using environment override", zap.String("env_name", envName))
			return v, nil
		}
	}
	return p.store.GetSecret(ctx, secretName)
}

// Binding ties a secret to the config field it fills
type Binding struct {
	SecretName string
	EnvName    string
	Target     *string
	Required   bool
}

// Apply resolves every binding, writing found values into their targets.
// Missing optional secrets leave the target as it was.
func (p *Provider) Apply(ctx context.Context, bindings []Binding) error {
	for _, b := range bindings {
		v, err := p.Lookup(ctx, b.SecretName, b.EnvName)
		if err != nil {
			if b.Required {
				return fmt.Errorf("failed to resolve secret %s: %w", b.SecretName, err)
			}
			p.logger.Debug("optional secret not resolved", zap.String("secret_name", b.SecretName), zap.Error(err))
			continue
		}
		*b.Target = v
	}
	return nil
}
