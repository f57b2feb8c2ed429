package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the pipeline.
type Config struct {
	Loader   LoaderConfig   `yaml:"loader"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Store    StoreConfig    `yaml:"store"`
	Query    QueryConfig    `yaml:"query"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoaderConfig controls how the document loader scans a directory.
type LoaderConfig struct {
	Recursive     bool     `yaml:"recursive"`
	ExcludeHidden bool     `yaml:"exclude_hidden"`
	Excludes      []string `yaml:"excludes"`
}

// ChunkingConfig controls how documents are split before embedding.
type ChunkingConfig struct {
	ChunkTokens  int `yaml:"chunk_tokens"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// StoreConfig controls the persistent vector store.
type StoreConfig struct {
	CollectionPrefix string `yaml:"collection_prefix"`
	PersistDir       string `yaml:"persist_dir"`
}

// QueryConfig controls retrieval and answer synthesis.
type QueryConfig struct {
	TopK        int `yaml:"top_k"`
	TokenBudget int `yaml:"token_budget"`
}

// ServerConfig controls the HTTP query server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Loader: LoaderConfig{
			Recursive:     true,
			ExcludeHidden: true,
			Excludes:      []string{"**/~$*"},
		},
		Chunking: ChunkingConfig{
			ChunkTokens:  512,
			ChunkOverlap: 50,
		},
		Store: StoreConfig{
			CollectionPrefix: "rag_collection",
			PersistDir:       filepath.Join("data", "vector_store"),
		},
		Query: QueryConfig{
			TopK:        4,
			TokenBudget: 4000,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for rag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "rag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath returns the bbolt database file inside the persist directory.
func StorePath(c *Config) string {
	return filepath.Join(c.Store.PersistDir, "collections.db")
}
