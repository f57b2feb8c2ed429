package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// Provider identifies which API family serves a model configuration.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderAzure  Provider = "azure"
	ProviderLocal  Provider = "local"
)

// ModelConfig pairs a chat model with the embedding model its
// collections are built with. Credentials are never stored here; they
// come from the environment (OPENAI_API_KEY, or AZURE_OPENAI_API_KEY
// and AZURE_OPENAI_ENDPOINT for the Azure provider).
type ModelConfig struct {
	Name           string
	Provider       Provider
	LLMModel       string
	EmbeddingModel string
	APIBase        string
	APIVersion     string
}

var modelConfigs = map[string]ModelConfig{
	"default": {
		Provider:       ProviderOpenAI,
		LLMModel:       "gpt-4o",
		EmbeddingModel: "text-embedding-3-large",
	},
	"fast": {
		Provider:       ProviderOpenAI,
		LLMModel:       "gpt-4",
		EmbeddingModel: "text-embedding-3-small",
	},
	"legacy": {
		Provider:       ProviderOpenAI,
		LLMModel:       "gpt-3.5-turbo",
		EmbeddingModel: "text-embedding-3-small",
	},
	// Azure model names are deployment names.
	"azure_default": {
		Provider:       ProviderAzure,
		LLMModel:       "gpt-4",
		EmbeddingModel: "text-embedding-ada-002",
		APIVersion:     "2024-02-15-preview",
	},
	"azure_fast": {
		Provider:       ProviderAzure,
		LLMModel:       "gpt-35-turbo",
		EmbeddingModel: "text-embedding-ada-002",
		APIVersion:     "2024-02-15-preview",
	},
	"local": {
		Provider:       ProviderLocal,
		LLMModel:       "llama3.1",
		EmbeddingModel: "nomic-embed-text",
		APIBase:        "http://localhost:11434/v1",
	},
}

var fileTypeSets = map[string][]string{
	"default":   {".pdf", ".docx", ".txt", ".md"},
	"text_only": {".txt", ".md"},
	"documents": {".pdf", ".docx"},
	"office":    {".docx", ".xlsx", ".pptx"},
}

// ResolveModelConfig returns the named model configuration.
func ResolveModelConfig(name string) (ModelConfig, error) {
	mc, ok := modelConfigs[name]
	if !ok {
		return ModelConfig{}, fmt.Errorf("%w: %q (available: %s)",
			domain.ErrUnknownModelConfig, name, strings.Join(ModelConfigNames(), ", "))
	}
	mc.Name = name
	return mc, nil
}

// ModelConfigNames returns the available configuration names, sorted.
func ModelConfigNames() []string {
	names := make([]string, 0, len(modelConfigs))
	for name := range modelConfigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveFileTypes returns a copy of the named extension set.
func ResolveFileTypes(name string) ([]string, error) {
	exts, ok := fileTypeSets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			domain.ErrUnknownFileTypes, name, strings.Join(FileTypeSetNames(), ", "))
	}
	out := make([]string, len(exts))
	copy(out, exts)
	return out, nil
}

// FileTypeSetNames returns the available file type set names, sorted.
func FileTypeSetNames() []string {
	names := make([]string, 0, len(fileTypeSets))
	for name := range fileTypeSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Response modes supported by the query engine.
const (
	ResponseModeCompact       = "compact"
	ResponseModeRefine        = "refine"
	ResponseModeTreeSummarize = "tree_summarize"
)

// DefaultResponseMode is used when a query does not name a mode.
const DefaultResponseMode = ResponseModeCompact

// SupportedResponseModes returns the accepted response mode names.
func SupportedResponseModes() []string {
	return []string{ResponseModeCompact, ResponseModeRefine, ResponseModeTreeSummarize}
}

// IsSupportedResponseMode reports whether mode is a known response mode.
func IsSupportedResponseMode(mode string) bool {
	switch mode {
	case ResponseModeCompact, ResponseModeRefine, ResponseModeTreeSummarize:
		return true
	}
	return false
}

// CollectionName derives the stored collection name for a model
// configuration when no explicit name is given.
func CollectionName(prefix, configName string) string {
	return prefix + "_" + configName
}
