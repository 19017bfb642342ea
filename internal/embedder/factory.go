package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted for provider selection and credentials.
const (
	EnvProvider     = "CMDRECALL_EMBEDDING_PROVIDER"
	EnvJinaAPIKey   = "JINA_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	APIKey    string
	CacheSize int
	CPUOnly   bool
}

// New creates an embedder with explicit configuration
func New(cfg Config) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	switch strings.ToLower(cfg.Provider) {
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cache)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	case ProviderLocal:
		return NewLocalProvider(cache, cfg.CPUOnly)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. CMDRECALL_EMBEDDING_PROVIDER (jina, openai, local)
//  2. Check for API keys: JINA_API_KEY, OPENAI_API_KEY
//  3. Default to local if no API keys found
func NewFromEnv(cpuOnly bool) (Embedder, error) {
	provider := DetectProvider()
	return New(Config{
		Provider: provider,
		APIKey:   apiKeyFor(provider),
		CPUOnly:  cpuOnly,
	})
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}

func apiKeyFor(provider string) string {
	switch provider {
	case ProviderJina:
		return os.Getenv(EnvJinaAPIKey)
	case ProviderOpenAI:
		return os.Getenv(EnvOpenAIAPIKey)
	}
	return ""
}
