package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/adapter/chunker"
	"github.com/MiMa6/rag-search-system/internal/adapter/embedding"
	"github.com/MiMa6/rag-search-system/internal/adapter/extract"
	"github.com/MiMa6/rag-search-system/internal/adapter/fs"
	"github.com/MiMa6/rag-search-system/internal/adapter/llm"
	"github.com/MiMa6/rag-search-system/internal/adapter/store"
	"github.com/MiMa6/rag-search-system/internal/usecase"
)

// openStore opens the collection database at the configured path,
// creating the persist directory when missing.
func openStore(cfg *config.Config, override string) (*store.BoltStore, error) {
	path := config.StorePath(cfg)
	if override != "" {
		path = override
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return store.NewBoltStore(path)
}

// resolveCollection picks the collection name. An explicit flag wins;
// otherwise the name derives from the configured prefix and the model
// configuration, so each model family keeps its own collection.
func resolveCollection(cfg *config.Config, configName, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return config.CollectionName(cfg.Store.CollectionPrefix, configName)
}

// buildPipeline wires a full pipeline for the named model configuration
// on top of an already opened store. The caller keeps ownership of the
// store and closes it.
func buildPipeline(cfg *config.Config, mc config.ModelConfig, fileTypes []string, collection string, st *store.BoltStore, topK int) (*usecase.Pipeline, error) {
	embedder, err := embedding.NewClient(mc)
	if err != nil {
		return nil, err
	}
	generator, err := llm.NewClient(mc)
	if err != nil {
		return nil, err
	}

	walker := fs.NewWalker(fileTypes, cfg.Loader.Recursive, cfg.Loader.ExcludeHidden, cfg.Loader.Excludes)
	loader := usecase.NewDocumentLoader(walker, extract.NewRegistry())
	splitter := chunker.NewSentenceChunker(cfg.Chunking.ChunkTokens, cfg.Chunking.ChunkOverlap)
	manager := usecase.NewCollectionManager(st, embedder, splitter, collection)
	synthesizer := usecase.NewSynthesizer(generator, cfg.Query.TokenBudget)

	return usecase.NewPipeline(manager, loader, synthesizer, topK), nil
}

// printCollections writes a numbered listing of the stored collections.
func printCollections(st *store.BoltStore) error {
	infos, err := st.ListCollections()
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No collections stored.")
		return nil
	}
	fmt.Printf("Available collections (%d):\n", len(infos))
	for i, info := range infos {
		fmt.Printf("%d. %s (%d documents)\n", i+1, info.Name, info.Count)
	}
	return nil
}
