package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"chwresume/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets holds KV v2 paths. An empty path skips that secret.
type VaultSecrets struct {
	APIKeys    string `mapstructure:"apiKeys"`    // key "keys": comma-separated API keys
	Vocabulary string `mapstructure:"vocabulary"` // key "yaml": vocabulary extension document
	TLSCerts   string `mapstructure:"tlsCerts"`   // keys "cert", "key", "ca": PEM content
}

// VaultSecret is a secret read from a KV v2 engine
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// secretReader is the part of VaultClient the secret loaders need
type secretReader interface {
	GetSecretV2(path string) (*VaultSecret, error)
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient connects to Vault. It returns nil when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		return nil, nil
	}

	apiConfig := api.DefaultConfig()
	if config.Address != "" {
		apiConfig.Address = config.Address
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	logger.Info("Connected to Vault",
		"address", apiConfig.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken returns the configured token, falling back to TokenFile
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		data, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 reads a secret from a KV v2 engine
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	vc.logger.Debug("Reading secret from Vault", "path", path)
	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	return parseKVv2Secret(secret, path)
}

// parseKVv2Secret unwraps the data and metadata.version fields of a KV v2 response
func parseKVv2Secret(secret *api.Secret, path string) (*VaultSecret, error) {
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	raw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(raw, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue accepts the numeric shapes Vault responses decode into
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// stringField returns a string value from secret data
func stringField(secret *VaultSecret, path, key string) (string, error) {
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return s, nil
}

// ApplyVaultSecrets loads the configured secrets from Vault into config.
// Vault values take precedence over file and environment values.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to initialize vault client", err)
	}

	return applySecrets(client, config, logger)
}

func applySecrets(reader secretReader, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets
	loaders := []struct {
		name string
		path string
		load func(*VaultSecret, string, *Config) error
	}{
		{"api keys", secrets.APIKeys, applyAPIKeysSecret},
		{"vocabulary", secrets.Vocabulary, applyVocabularySecret},
		{"tls certificates", secrets.TLSCerts, applyTLSSecret},
	}

	for _, loader := range loaders {
		if loader.path == "" {
			continue
		}

		secret, err := reader.GetSecretV2(loader.path)
		if err == nil {
			err = loader.load(secret, loader.path, config)
		}
		if err != nil {
			logger.LogError(err, "Failed to load secret from Vault", "secret", loader.name, "path", loader.path)
			return fmt.Errorf("failed to load %s from vault: %w", loader.name, err)
		}
		logger.Info("Secret loaded from Vault", "secret", loader.name, "version", secret.Version)
	}

	return nil
}

func applyAPIKeysSecret(secret *VaultSecret, path string, config *Config) error {
	value, err := stringField(secret, path, "keys")
	if err != nil {
		return err
	}
	if keys := splitKeys(value); len(keys) > 0 {
		config.Server.APIKeys = keys
	}
	return nil
}

func applyVocabularySecret(secret *VaultSecret, path string, config *Config) error {
	value, err := stringField(secret, path, "yaml")
	if err != nil {
		return err
	}
	config.Parser.VocabularyOverlay = value
	_, err = LoadVocabulary(config.Parser)
	return err
}

func applyTLSSecret(secret *VaultSecret, path string, config *Config) error {
	for _, field := range []string{"cert_file", "key_file", "ca_file"} {
		if _, ok := secret.Data[field]; ok {
			return fmt.Errorf("'%s' field is not supported in %s. Store PEM content in '%s' instead",
				field, path, strings.TrimSuffix(field, "_file"))
		}
	}

	tls := &config.Server.TLS
	targets := map[string]*string{
		"cert": &tls.CertContent,
		"key":  &tls.KeyContent,
		"ca":   &tls.CAContent,
	}
	for key, target := range targets {
		if content, ok := secret.Data[key].(string); ok && content != "" {
			*target = content
		}
	}

	// Vault content replaces file sources rather than conflicting with them
	if tls.CertContent != "" {
		tls.CertFile = ""
	}
	if tls.KeyContent != "" {
		tls.KeyFile = ""
	}
	if tls.CAContent != "" {
		tls.CAFile = ""
	}
	return nil
}
