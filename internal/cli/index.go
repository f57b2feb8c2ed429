package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MiMa6/rag-search-system/config"
)

var (
	indexDataDir    string
	indexCollection string
	indexModel      string
	indexFileTypes  string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load documents into a collection",
	Long: `Load all supported documents under a directory, embed them and persist
them into a named collection. A collection that already holds documents
is reused as-is; delete it first to re-embed.

Examples:
  rag-search index -d ./docs                       # Index with the default models
  rag-search index -d ./contracts -m fast          # Smaller, cheaper models
  rag-search index -d ./sheets --file-types office # Word, Excel, PowerPoint only
  rag-search index -c my_docs                      # Explicit collection name`,
	RunE: runIndexCmd,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVarP(&indexDataDir, "data-dir", "d", "data", "directory containing documents")
	indexCmd.Flags().StringVarP(&indexCollection, "collection-name", "c", "", "collection name (default: prefix + model config)")
	indexCmd.Flags().StringVarP(&indexModel, "model-config", "m", "default", "model configuration to use")
	indexCmd.Flags().StringVar(&indexFileTypes, "file-types", "default", "file type set to load")
}

func runIndexCmd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	mc, err := config.ResolveModelConfig(indexModel)
	if err != nil {
		return err
	}
	fileTypes, err := config.ResolveFileTypes(indexFileTypes)
	if err != nil {
		return err
	}
	collection := resolveCollection(cfg, mc.Name, indexCollection)

	st, err := openStore(cfg, "")
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	pipeline, err := buildPipeline(cfg, mc, fileTypes, collection, st, cfg.Query.TopK)
	if err != nil {
		return err
	}
	pipeline.Progress = newProgressBar()

	fmt.Printf("Loading documents from %s into %s (model config: %s)\n", indexDataDir, collection, mc.Name)

	result, err := pipeline.LoadDocuments(cmd.Context(), indexDataDir)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if result.Reused {
		fmt.Printf("Collection %s already holds %d chunks; reusing the existing index.\n", collection, result.Chunks)
		fmt.Println("Delete it first (rag-search store delete) to re-embed.")
	} else {
		fmt.Printf("\nIndexing complete:\n")
		fmt.Printf("  Documents loaded: %d\n", result.Documents)
		fmt.Printf("  Chunks embedded:  %d\n", result.Chunks)
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nCollections stored at: %s\n", config.StorePath(cfg))
	return nil
}

// newProgressBar returns an embedding progress callback backed by a
// terminal progress bar. The bar is created on the first call, once the
// chunk total is known.
func newProgressBar() func(done, total int) {
	var bar *progressbar.ProgressBar
	var mu sync.Mutex
	var startTime time.Time

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(done)

		if done > 0 && done < total {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Embedding[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
