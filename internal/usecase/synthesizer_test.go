package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/domain"
)

type stubLLM struct {
	calls    int
	prompts  []string
	response string
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, userPrompt)
	if s.err != nil {
		return "", s.err
	}
	if s.response != "" {
		return s.response, nil
	}
	return fmt.Sprintf("answer %d", s.calls), nil
}

func (s *stubLLM) ModelName() string { return "stub" }

func scoredChunks(texts ...string) []domain.ScoredChunk {
	chunks := make([]domain.ScoredChunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{ID: fmt.Sprintf("c%d", i), Text: text},
			Score: 1.0 - float64(i)*0.1,
		}
	}
	return chunks
}

func TestSynthesizeEmptyChunksSkipsModel(t *testing.T) {
	llm := &stubLLM{}
	s := NewSynthesizer(llm, 1000)

	answer, err := s.Synthesize(context.Background(), "anything?", config.ResponseModeCompact, nil)
	if err != nil {
		t.Fatal(err)
	}
	if answer != NoContextAnswer {
		t.Errorf("expected the no-context answer, got %q", answer)
	}
	if llm.calls != 0 {
		t.Errorf("expected no model calls, got %d", llm.calls)
	}
}

func TestCompactSingleWindow(t *testing.T) {
	llm := &stubLLM{response: "final"}
	s := NewSynthesizer(llm, 1000)

	answer, err := s.Synthesize(context.Background(), "what changed?",
		config.ResponseModeCompact, scoredChunks("short one", "short two"))
	if err != nil {
		t.Fatal(err)
	}
	if answer != "final" {
		t.Errorf("got %q", answer)
	}
	if llm.calls != 1 {
		t.Errorf("expected 1 call for a single window, got %d", llm.calls)
	}
	if !strings.Contains(llm.prompts[0], "what changed?") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(llm.prompts[0], "short one") || !strings.Contains(llm.prompts[0], "short two") {
		t.Error("prompt missing chunk context")
	}
}

func TestCompactMultipleWindowsRefines(t *testing.T) {
	llm := &stubLLM{}
	s := NewSynthesizer(llm, 10)

	long1 := strings.Repeat("alpha beta gamma delta epsilon ", 3)
	long2 := strings.Repeat("zeta eta theta iota kappa ", 3)

	_, err := s.Synthesize(context.Background(), "q?",
		config.ResponseModeCompact, scoredChunks(long1, long2))
	if err != nil {
		t.Fatal(err)
	}
	if llm.calls != 2 {
		t.Fatalf("expected 2 calls (answer + refine), got %d", llm.calls)
	}
	if !strings.Contains(llm.prompts[1], "existing answer") {
		t.Errorf("second prompt is not a refine prompt: %q", llm.prompts[1])
	}
	if !strings.Contains(llm.prompts[1], "answer 1") {
		t.Errorf("refine prompt missing the prior answer: %q", llm.prompts[1])
	}
}

func TestRefineCallsPerChunk(t *testing.T) {
	llm := &stubLLM{}
	s := NewSynthesizer(llm, 10000)

	_, err := s.Synthesize(context.Background(), "q?",
		config.ResponseModeRefine, scoredChunks("one", "two", "three"))
	if err != nil {
		t.Fatal(err)
	}
	if llm.calls != 3 {
		t.Errorf("expected one call per chunk, got %d", llm.calls)
	}
}

func TestTreeSummarizeConverges(t *testing.T) {
	llm := &stubLLM{response: "summary"}
	s := NewSynthesizer(llm, 12)

	chunks := scoredChunks(
		"alpha beta gamma delta epsilon zeta",
		"eta theta iota kappa lambda mu",
		"nu xi omicron pi rho sigma",
		"tau upsilon phi chi psi omega",
	)
	answer, err := s.Synthesize(context.Background(), "q?", config.ResponseModeTreeSummarize, chunks)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "summary" {
		t.Errorf("got %q", answer)
	}
	if llm.calls < 2 {
		t.Errorf("expected hierarchical reduction with multiple calls, got %d", llm.calls)
	}
}

func TestTreeSummarizeSingleChunkStillAsksModel(t *testing.T) {
	llm := &stubLLM{response: "direct"}
	s := NewSynthesizer(llm, 1000)

	answer, err := s.Synthesize(context.Background(), "q?",
		config.ResponseModeTreeSummarize, scoredChunks("only chunk"))
	if err != nil {
		t.Fatal(err)
	}
	if answer != "direct" {
		t.Errorf("got %q", answer)
	}
	if llm.calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", llm.calls)
	}
}

func TestSynthesizeWrapsProviderError(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("rate limited")}
	s := NewSynthesizer(llm, 1000)

	_, err := s.Synthesize(context.Background(), "q?",
		config.ResponseModeCompact, scoredChunks("ctx"))
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("expected ProviderError, got %T: %v", err, err)
	}
}

func TestPackTexts(t *testing.T) {
	groups := packTexts([]string{
		"one two three",
		"four five six",
		"seven eight nine",
	}, 8)

	// Each text is ~3 words, about 3 tokens; two fit per 8-token group.
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(groups), groups)
	}
	if len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Errorf("unexpected grouping: %v", groups)
	}
}

func TestPackTextsOversizedText(t *testing.T) {
	groups := packTexts([]string{
		strings.Repeat("word ", 50),
		"small",
	}, 10)

	if len(groups) != 2 {
		t.Fatalf("expected oversized text in its own group, got %v", groups)
	}
	if len(groups[0]) != 1 {
		t.Errorf("oversized text should be alone: %v", groups[0])
	}
}
