package config

import (
	"context"
	"os"
)

// EnvProvider resolves secrets from process environment variables. It sits
// first in the chain so GEMINI_API_KEY or JWT_SECRET set in the environment
// win over mounted secret files.
type EnvProvider struct{}

// NewEnvProvider creates an environment variable secret provider
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// GetSecret looks the key up in the environment. An unset or empty variable
// yields an empty value, which the chain treats as a miss.
func (e *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	value, _ := os.LookupEnv(key)
	return value, nil
}

// Name returns the provider name
func (e *EnvProvider) Name() string {
	return "env"
}

// IsAvailable reports true; the environment is always present
func (e *EnvProvider) IsAvailable(ctx context.Context) bool {
	return true
}
