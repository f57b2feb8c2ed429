package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// PipelineState tells whether the pipeline can answer queries.
type PipelineState int

const (
	StateEmpty PipelineState = iota
	StateReady
)

// Pipeline is the end-to-end facade: load documents into the active
// collection, then answer questions against it. One collection per
// pipeline instance.
type Pipeline struct {
	manager     *CollectionManager
	loader      *DocumentLoader
	synthesizer *Synthesizer
	topK        int
	index       *Index

	// Progress, when set, receives embedding progress during loads
	// that build a new index.
	Progress BuildProgress
}

func NewPipeline(manager *CollectionManager, loader *DocumentLoader, synthesizer *Synthesizer, topK int) *Pipeline {
	return &Pipeline{
		manager:     manager,
		loader:      loader,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// LoadResult describes what LoadDocuments did.
type LoadResult struct {
	Reused    bool
	Documents int
	Chunks    int
	Warnings  []string
}

// LoadDocuments makes the pipeline ready to answer queries. When the
// collection already holds records they are reused as-is and nothing
// is re-embedded; otherwise the directory is loaded, chunked, embedded
// and persisted. A directory with no loadable documents leaves the
// pipeline empty, with a warning rather than an error.
func (p *Pipeline) LoadDocuments(ctx context.Context, dir string) (*LoadResult, error) {
	existing, err := p.manager.ExistingIndex()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		count, err := p.manager.DocumentCount()
		if err != nil {
			return nil, err
		}
		p.index = existing
		return &LoadResult{Reused: true, Chunks: count}, nil
	}

	docs, warnings, err := p.loader.Load(dir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		warnings = append(warnings, fmt.Sprintf("no supported documents found in %s", dir))
		return &LoadResult{Warnings: warnings}, nil
	}

	index, chunkCount, err := p.manager.BuildIndex(ctx, docs, p.Progress)
	if err != nil {
		return nil, err
	}
	p.index = index

	return &LoadResult{
		Documents: len(docs),
		Chunks:    chunkCount,
		Warnings:  warnings,
	}, nil
}

// AttachExisting points the pipeline at the collection's stored index
// without loading any documents. A collection with no records leaves
// the pipeline empty.
func (p *Pipeline) AttachExisting() error {
	existing, err := p.manager.ExistingIndex()
	if err != nil {
		return err
	}
	p.index = existing
	return nil
}

func (p *Pipeline) State() PipelineState {
	if p.index == nil {
		return StateEmpty
	}
	return StateReady
}

func (p *Pipeline) Collection() string {
	return p.manager.Collection()
}

func (p *Pipeline) DocumentCount() (int, error) {
	return p.manager.DocumentCount()
}

// Query answers a question against the loaded index. The pipeline must
// have been loaded first; that precondition is checked before the
// response mode is validated, and both before any retrieval.
func (p *Pipeline) Query(ctx context.Context, question, mode string) (string, error) {
	answer, err := p.Answer(ctx, question, mode)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// Answer is Query with the retrieved source chunks included.
func (p *Pipeline) Answer(ctx context.Context, question, mode string) (*Answer, error) {
	if p.index == nil {
		return nil, fmt.Errorf("%w: no documents have been loaded, call LoadDocuments first", domain.ErrNoIndexLoaded)
	}
	engine := NewQueryEngine(p.index, p.synthesizer, p.topK)
	return engine.Query(ctx, question, mode)
}

// DeleteIndex removes the active collection's stored data and returns
// the pipeline to the empty state. Deleting an index that was never
// built is not an error.
func (p *Pipeline) DeleteIndex() error {
	if err := p.manager.DeleteCollection(); err != nil && !errors.Is(err, domain.ErrCollectionNotFound) {
		return err
	}
	p.index = nil
	return nil
}
