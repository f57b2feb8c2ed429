package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/adapter/store"
	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/tui"
	"github.com/MiMa6/rag-search-system/internal/usecase"
)

var (
	queryQuestion    string
	queryMode        string
	queryCollection  string
	queryModel       string
	queryTopK        int
	queryJSON        bool
	queryShowSources bool
	queryListOnly    bool
	queryDebug       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question over an indexed collection",
	Long: `Retrieve the most relevant chunks from a collection and synthesize an
answer with the configured language model. The collection must have been
indexed first. Without --question an interactive session opens instead.

Examples:
  rag-search query -q "What changed between versions?"
  rag-search query -q "Summarize the budget" --response-mode tree_summarize
  rag-search query -q "Which spec is newer?" -k 8 --sources
  rag-search query
  rag-search query --list-collections`,
	RunE: runQueryCmd,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryQuestion, "question", "q", "", "question to ask (omit for an interactive session)")
	queryCmd.Flags().StringVar(&queryMode, "response-mode", "", "answer assembly mode: compact, refine or tree_summarize")
	queryCmd.Flags().StringVarP(&queryCollection, "collection-name", "c", "", "collection name (default: prefix + model config)")
	queryCmd.Flags().StringVarP(&queryModel, "model-config", "m", "default", "model configuration to use")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryShowSources, "sources", false, "print the retrieved chunks and scores")
	queryCmd.Flags().BoolVar(&queryListOnly, "list-collections", false, "list stored collections and exit")
	queryCmd.Flags().BoolVar(&queryDebug, "debug", false, "print the full error chain on failure")
}

// queryOutput is the JSON shape of a query answer.
type queryOutput struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []sourceOutput `json:"sources"`
}

type sourceOutput struct {
	File  string  `json:"file"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

func runQueryCmd(cmd *cobra.Command, args []string) error {
	err := runQuery(cmd)
	if err != nil && queryDebug {
		printErrorChain(err)
	}
	return err
}

func runQuery(cmd *cobra.Command) error {
	cfg := GetConfig()

	st, err := openStore(cfg, "")
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if queryListOnly {
		return printCollections(st)
	}

	mc, err := config.ResolveModelConfig(queryModel)
	if err != nil {
		return err
	}
	collection := resolveCollection(cfg, mc.Name, queryCollection)

	topK := cfg.Query.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	pipeline, err := buildPipeline(cfg, mc, nil, collection, st, topK)
	if err != nil {
		return err
	}
	if err := pipeline.AttachExisting(); err != nil {
		return err
	}

	if queryQuestion == "" {
		if pipeline.State() != usecase.StateReady {
			printNoIndexHint(st, collection)
			return fmt.Errorf("%w: collection %s", domain.ErrNoIndexLoaded, collection)
		}
		return tui.Run(collection, func(ctx context.Context, question string) (string, error) {
			return pipeline.Query(ctx, question, queryMode)
		})
	}

	answer, err := pipeline.Answer(cmd.Context(), queryQuestion, queryMode)
	if err != nil {
		if errors.Is(err, domain.ErrNoIndexLoaded) {
			printNoIndexHint(st, collection)
		}
		return err
	}

	if queryJSON {
		out := queryOutput{Question: queryQuestion, Answer: answer.Text, Sources: []sourceOutput{}}
		for _, src := range answer.Sources {
			out.Sources = append(out.Sources, sourceOutput{
				File:  src.Chunk.Metadata["file_name"],
				Score: src.Score,
				Text:  src.Chunk.Text,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(answer.Text)

	if queryShowSources {
		fmt.Printf("\nSources (%d chunks):\n\n", len(answer.Sources))
		for i, src := range answer.Sources {
			fmt.Printf("--- [%d] %s (score: %.3f) ---\n", i+1, src.Chunk.Metadata["file_name"], src.Score)
			text := src.Chunk.Text
			if len(text) > 500 {
				text = text[:500] + "..."
			}
			fmt.Println(text)
			fmt.Println()
		}
	}

	return nil
}

// printNoIndexHint lists the stored collections so a failed query points
// at something actionable.
func printNoIndexHint(st *store.BoltStore, collection string) {
	fmt.Printf("Collection %s has no documents. Run 'rag-search index -d <dir>' first, or pick another collection.\n\n", collection)
	_ = printCollections(st)
}

func printErrorChain(err error) {
	fmt.Fprintln(os.Stderr, "Error chain:")
	for depth := 0; err != nil; depth++ {
		fmt.Fprintf(os.Stderr, "%s- %v\n", strings.Repeat("  ", depth), err)
		err = errors.Unwrap(err)
	}
}
