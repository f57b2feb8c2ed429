package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/adapter/embedding"
	"github.com/MiMa6/rag-search-system/internal/adapter/store"
)

func main() {
	query := flag.String("q", "", "Query to test")
	collection := flag.String("c", "", "Collection name (default: prefix + model config)")
	modelConfig := flag.String("m", "default", "Model configuration")
	topK := flag.Int("k", 10, "Number of results")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -q \"query\" [-c collection] [-m default] [-k 10]")
		fmt.Println("\nChecks:")
		fmt.Println("  1. Embedding infrastructure (model connection, vector store)")
		fmt.Println("  2. Semantic similarity (query vs stored chunks)")
		fmt.Println("  3. Retrieval quality (average and top-1 scores)")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	mc, err := config.ResolveModelConfig(*modelConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	name := *collection
	if name == "" {
		name = config.CollectionName(cfg.Store.CollectionPrefix, mc.Name)
	}

	st, err := store.NewBoltStore(config.StorePath(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	count, err := st.Count(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error counting collection: %v\n", err)
		os.Exit(1)
	}
	if count == 0 {
		fmt.Fprintf(os.Stderr, "Collection %s is empty - run 'rag-search index' first\n", name)
		os.Exit(1)
	}

	embedder, err := embedding.NewClient(mc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedder init failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("SEMANTIC RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("Collection: %s\n", name)
	fmt.Printf("Chunks indexed: %d\n", count)
	fmt.Printf("Model: %s (%s)\n", mc.EmbeddingModel, mc.Provider)
	fmt.Printf("Dimension: %d\n", embedder.Dimension())
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	vectors, err := embedder.Embed(context.Background(), []string{*query})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Query embedded: %d dimensions\n\n", len(vectors[0]))

	results, err := st.Search(name, vectors[0], *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		os.Exit(1)
	}

	fmt.Printf("Top %d semantic matches:\n\n", len(results))

	totalScore := 0.0
	for i, r := range results {
		preview := strings.ReplaceAll(r.Text, "\n", " ")
		if len(preview) > 150 {
			preview = preview[:150] + "..."
		}

		totalScore += r.Score

		rating := "LOW"
		if r.Score > 0.7 {
			rating = "HIGH"
		} else if r.Score > 0.5 {
			rating = "GOOD"
		} else if r.Score > 0.3 {
			rating = "OK"
		}

		fmt.Printf("%d. [%s %.3f] %s\n", i+1, rating, r.Score, r.Metadata["file_name"])
		fmt.Printf("   %s\n\n", preview)
	}

	avgScore := totalScore / float64(len(results))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avgScore)
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)

	if avgScore > 0.5 {
		fmt.Println("  Status: GOOD - semantic retrieval working well")
	} else if avgScore > 0.3 {
		fmt.Println("  Status: OK - results are somewhat related")
	} else {
		fmt.Println("  Status: POOR - may need better embeddings or re-indexing")
	}
}
