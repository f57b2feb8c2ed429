package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MiMa6/rag-search-system/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rag-search",
	Short: "RAG Search System - Index local documents and query them with an LLM",
	Long: `rag-search loads documents from a directory (text, Markdown, PDF, Word,
Excel, PowerPoint), embeds them into a persistent vector collection and
answers natural-language questions over them with retrieval-augmented
generation.

Example usage:
  rag-search gendocs                       # Generate the versioned demo corpus
  rag-search index -d ./docs               # Embed documents into a collection
  rag-search query -q "What changed between versions?"
  rag-search run                           # Demo: version comparison questions
  rag-search store list                    # Show stored collections
  rag-search serve                         # Serve the query API over HTTP`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env next to the binary may carry provider credentials.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(".")
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rag.yaml)")
}

func GetConfig() *config.Config {
	return cfg
}
