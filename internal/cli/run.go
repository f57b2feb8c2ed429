package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/tui"
)

// demoQuestions exercise version comparison across the generated corpus.
var demoQuestions = []string{
	"Compare all versions of the Project Overview document. What are the key differences between versions?",
	"Which version of the Technical Specification is more recent, and what major changes were made?",
	"List all documents that appear to be different versions of the same content, ordered by date.",
	"Identify any documents that could be considered outdated and should be archived, explaining why.",
}

var (
	runDataDir     string
	runCollection  string
	runModel       string
	runMode        string
	runInteractive bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the document comparison demo",
	Long: `Index the demo corpus and run a set of version comparison questions over
it. Use --interactive to ask your own questions in a terminal UI instead.

Generate the corpus first with 'rag-search gendocs'.`,
	RunE: runRunCmd,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runDataDir, "data-dir", "d", "data/test_docs", "directory containing documents")
	runCmd.Flags().StringVarP(&runCollection, "collection-name", "c", "", "collection name (default: prefix + model config)")
	runCmd.Flags().StringVarP(&runModel, "model-config", "m", "default", "model configuration to use")
	runCmd.Flags().StringVar(&runMode, "response-mode", "", "answer assembly mode: compact, refine or tree_summarize")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "interactive question prompt")
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	mc, err := config.ResolveModelConfig(runModel)
	if err != nil {
		return err
	}
	fileTypes, err := config.ResolveFileTypes("default")
	if err != nil {
		return err
	}
	collection := resolveCollection(cfg, mc.Name, runCollection)

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

	fmt.Printf("Loading documents from %s...\n", runDataDir)
	result, err := pipeline.LoadDocuments(cmd.Context(), runDataDir)
	if err != nil {
		return fmt.Errorf("loading failed: %w", err)
	}
	for _, w := range result.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	if result.Reused {
		fmt.Printf("Reusing collection %s (%d chunks).\n", collection, result.Chunks)
	} else {
		fmt.Printf("Indexed %d documents (%d chunks) into %s.\n", result.Documents, result.Chunks, collection)
	}

	if runInteractive {
		return tui.Run(collection, func(ctx context.Context, question string) (string, error) {
			return pipeline.Query(ctx, question, runMode)
		})
	}

	for i, question := range demoQuestions {
		fmt.Printf("\n=== Question %d of %d ===\n%s\n\n", i+1, len(demoQuestions), question)
		answer, err := pipeline.Query(cmd.Context(), question, runMode)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Println(answer)
	}

	return nil
}
