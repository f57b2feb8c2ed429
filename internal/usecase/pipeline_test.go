package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/MiMa6/rag-search-system/internal/adapter/chunker"
	"github.com/MiMa6/rag-search-system/internal/adapter/embedding"
	"github.com/MiMa6/rag-search-system/internal/adapter/store"
	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

type countingEmbedder struct {
	port.Embedder
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	return e.Embedder.Embed(ctx, texts)
}

type pipelineFixture struct {
	pipeline *Pipeline
	embedder *countingEmbedder
	llm      *stubLLM
	store    *store.MemoryStore
}

func newFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	st := store.NewMemoryStore()
	embedder := &countingEmbedder{Embedder: embedding.NewMockEmbedder(16)}
	llm := &stubLLM{response: "synthesized answer"}

	manager := NewCollectionManager(st, embedder, chunker.NewSentenceChunker(64, 8), "rag_collection_test")
	synth := NewSynthesizer(llm, 1000)
	pipeline := NewPipeline(manager, newLoader(".txt", ".md"), synth, 2)

	return &pipelineFixture{pipeline: pipeline, embedder: embedder, llm: llm, store: st}
}

func TestLoadDocumentsBuildsIndex(t *testing.T) {
	f := newFixture(t)
	dir := writeDocs(t, map[string]string{
		"one.txt": "The first project document. It describes the budget.",
		"two.txt": "The second project document. It describes the timeline.",
	})

	result, err := f.pipeline.LoadDocuments(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.Reused {
		t.Error("first load should not reuse")
	}
	if result.Documents != 2 {
		t.Errorf("expected 2 documents, got %d", result.Documents)
	}
	if result.Chunks == 0 {
		t.Error("expected chunks to be written")
	}
	if f.pipeline.State() != StateReady {
		t.Error("expected pipeline ready after load")
	}

	count, err := f.store.Count("rag_collection_test")
	if err != nil {
		t.Fatal(err)
	}
	if count != result.Chunks {
		t.Errorf("store count %d != reported chunks %d", count, result.Chunks)
	}
}

func TestLoadDocumentsReusesExistingIndex(t *testing.T) {
	f := newFixture(t)
	dir := writeDocs(t, map[string]string{"doc.txt": "Persistent content."})

	if _, err := f.pipeline.LoadDocuments(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	callsAfterBuild := f.embedder.calls
	if callsAfterBuild == 0 {
		t.Fatal("expected embedding during first load")
	}

	// A fresh pipeline over the same store must reuse, not re-embed.
	manager := NewCollectionManager(f.store, f.embedder, chunker.NewSentenceChunker(64, 8), "rag_collection_test")
	second := NewPipeline(manager, newLoader(".txt"), NewSynthesizer(f.llm, 1000), 2)

	result, err := second.LoadDocuments(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Reused {
		t.Error("expected reuse of the populated collection")
	}
	if f.embedder.calls != callsAfterBuild {
		t.Errorf("reload re-embedded: %d calls before, %d after", callsAfterBuild, f.embedder.calls)
	}
	if second.State() != StateReady {
		t.Error("expected pipeline ready after reuse")
	}
}

func TestLoadDocumentsEmptyDirectory(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	result, err := f.pipeline.LoadDocuments(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for an empty directory")
	}
	if f.pipeline.State() != StateEmpty {
		t.Error("pipeline should stay empty")
	}

	_, err = f.pipeline.Query(context.Background(), "anything?", "")
	if !errors.Is(err, domain.ErrNoIndexLoaded) {
		t.Errorf("expected ErrNoIndexLoaded, got %v", err)
	}
}

func TestLoadDocumentsMissingDirectory(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.LoadDocuments(context.Background(), "/no/such/directory")
	if !errors.Is(err, domain.ErrDirectoryNotFound) {
		t.Errorf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestAttachExisting(t *testing.T) {
	f := newFixture(t)
	dir := writeDocs(t, map[string]string{"doc.txt": "Attachable content about budgets."})

	if _, err := f.pipeline.LoadDocuments(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	// A query-only pipeline binds to the populated collection without a
	// document directory.
	manager := NewCollectionManager(f.store, f.embedder, nil, "rag_collection_test")
	second := NewPipeline(manager, nil, NewSynthesizer(f.llm, 1000), 2)

	if err := second.AttachExisting(); err != nil {
		t.Fatal(err)
	}
	if second.State() != StateReady {
		t.Error("expected pipeline ready after attach")
	}
	if _, err := second.Query(context.Background(), "what about budgets?", ""); err != nil {
		t.Fatalf("query after attach: %v", err)
	}
}

func TestAttachExistingEmptyCollection(t *testing.T) {
	f := newFixture(t)

	if err := f.pipeline.AttachExisting(); err != nil {
		t.Fatal(err)
	}
	if f.pipeline.State() != StateEmpty {
		t.Error("attach to an absent collection should leave the pipeline empty")
	}
}

func TestQueryBeforeLoad(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.Query(context.Background(), "who?", "")
	if !errors.Is(err, domain.ErrNoIndexLoaded) {
		t.Errorf("expected ErrNoIndexLoaded, got %v", err)
	}
	if f.llm.calls != 0 || f.embedder.calls != 0 {
		t.Error("no provider calls expected before load")
	}
}

func TestQueryRoundTrip(t *testing.T) {
	f := newFixture(t)
	dir := writeDocs(t, map[string]string{
		"budget.txt":   "The budget was increased to 650000 dollars in June.",
		"timeline.txt": "The timeline was extended to the fourth quarter.",
	})

	if _, err := f.pipeline.LoadDocuments(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	answer, err := f.pipeline.Answer(context.Background(), "What happened to the budget?", "")
	if err != nil {
		t.Fatal(err)
	}
	if answer.Text != "synthesized answer" {
		t.Errorf("got %q", answer.Text)
	}
	if len(answer.Sources) == 0 {
		t.Error("expected source chunks on the answer")
	}
	for _, src := range answer.Sources {
		if src.Chunk.Metadata["file_name"] == "" {
			t.Errorf("source chunk missing provenance: %v", src.Chunk.Metadata)
		}
	}
	if f.llm.calls == 0 {
		t.Error("expected the model to be called")
	}
}

func TestQueryUnsupportedModeFailsBeforeRetrieval(t *testing.T) {
	f := newFixture(t)
	dir := writeDocs(t, map[string]string{"doc.txt": "content"})

	if _, err := f.pipeline.LoadDocuments(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	callsAfterLoad := f.embedder.calls

	_, err := f.pipeline.Query(context.Background(), "q?", "hallucinate")
	if !errors.Is(err, domain.ErrUnsupportedResponseMode) {
		t.Fatalf("expected ErrUnsupportedResponseMode, got %v", err)
	}
	if f.embedder.calls != callsAfterLoad {
		t.Error("mode validation must happen before query embedding")
	}
	if f.llm.calls != 0 {
		t.Error("mode validation must happen before synthesis")
	}
}

func TestDeleteIndexThenRebuild(t *testing.T) {
	f := newFixture(t)
	dir := writeDocs(t, map[string]string{"doc.txt": "Rebuild me."})
	ctx := context.Background()

	if _, err := f.pipeline.LoadDocuments(ctx, dir); err != nil {
		t.Fatal(err)
	}
	if err := f.pipeline.DeleteIndex(); err != nil {
		t.Fatal(err)
	}
	if f.pipeline.State() != StateEmpty {
		t.Error("expected empty state after delete")
	}
	count, err := f.store.Count("rag_collection_test")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected empty collection after delete, got %d", count)
	}

	result, err := f.pipeline.LoadDocuments(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.Reused {
		t.Error("rebuild after delete must re-embed")
	}
	if f.pipeline.State() != StateReady {
		t.Error("expected ready state after rebuild")
	}
}

func TestDeleteIndexWithoutBuild(t *testing.T) {
	f := newFixture(t)
	if err := f.pipeline.DeleteIndex(); err != nil {
		t.Errorf("deleting a never-built index should be a no-op, got %v", err)
	}
}

type stubRetriever struct {
	calls  int
	chunks []domain.ScoredChunk
	err    error
}

func (r *stubRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	r.calls++
	return r.chunks, r.err
}

func TestQueryEngineDefaultsMode(t *testing.T) {
	llm := &stubLLM{response: "ok"}
	r := &stubRetriever{chunks: scoredChunks("ctx")}
	engine := NewQueryEngine(r, NewSynthesizer(llm, 1000), 4)

	answer, err := engine.Query(context.Background(), "q?", "")
	if err != nil {
		t.Fatal(err)
	}
	if answer.Text != "ok" {
		t.Errorf("got %q", answer.Text)
	}
	if r.calls != 1 {
		t.Errorf("expected 1 retrieval, got %d", r.calls)
	}
}

func TestQueryEngineRejectsUnknownModeWithoutRetrieving(t *testing.T) {
	r := &stubRetriever{}
	engine := NewQueryEngine(r, NewSynthesizer(&stubLLM{}, 1000), 4)

	_, err := engine.Query(context.Background(), "q?", "unknown_mode")
	if !errors.Is(err, domain.ErrUnsupportedResponseMode) {
		t.Fatalf("expected ErrUnsupportedResponseMode, got %v", err)
	}
	if r.calls != 0 {
		t.Error("retriever must not run for an unsupported mode")
	}
}

func TestQueryEngineWrapsRetrievalFailure(t *testing.T) {
	r := &stubRetriever{err: errors.New("connection refused")}
	engine := NewQueryEngine(r, NewSynthesizer(&stubLLM{}, 1000), 4)

	_, err := engine.Query(context.Background(), "q?", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("expected ProviderError, got %T: %v", err, err)
	}
}
