// Package provider builds API clients for the configured model backends.
// All backends speak the OpenAI wire protocol; Azure and local servers
// differ only in endpoint and authentication.
package provider

import (
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/MiMa6/rag-search-system/config"
)

// Environment variables holding provider credentials.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAzureKey      = "AZURE_OPENAI_API_KEY"
	EnvAzureEndpoint = "AZURE_OPENAI_ENDPOINT"
)

// NewAPIClient builds an OpenAI-protocol client for the model
// configuration's provider. Credentials come from the environment.
func NewAPIClient(mc config.ModelConfig) (*openai.Client, error) {
	switch mc.Provider {
	case config.ProviderAzure:
		apiKey := os.Getenv(EnvAzureKey)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", EnvAzureKey)
		}
		endpoint := mc.APIBase
		if env := os.Getenv(EnvAzureEndpoint); env != "" {
			endpoint = env
		}
		if endpoint == "" {
			return nil, fmt.Errorf("Azure endpoint not set: configure api_base or %s", EnvAzureEndpoint)
		}
		cfg := openai.DefaultAzureConfig(apiKey, endpoint)
		if mc.APIVersion != "" {
			cfg.APIVersion = mc.APIVersion
		}
		return openai.NewClientWithConfig(cfg), nil

	case config.ProviderLocal:
		// Local OpenAI-compatible servers ignore the key but the
		// client requires one.
		cfg := openai.DefaultConfig("ollama")
		if mc.APIBase != "" {
			cfg.BaseURL = mc.APIBase
		}
		return openai.NewClientWithConfig(cfg), nil

	default:
		apiKey := os.Getenv(EnvOpenAIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", EnvOpenAIKey)
		}
		cfg := openai.DefaultConfig(apiKey)
		if mc.APIBase != "" {
			cfg.BaseURL = mc.APIBase
		}
		return openai.NewClientWithConfig(cfg), nil
	}
}
