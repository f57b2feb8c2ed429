package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

// Answer is a synthesized response plus the chunks it was grounded on.
type Answer struct {
	Text    string
	Sources []domain.ScoredChunk
}

// QueryEngine runs one question through retrieval and synthesis.
type QueryEngine struct {
	retriever   port.Retriever
	synthesizer *Synthesizer
	topK        int
}

func NewQueryEngine(retriever port.Retriever, synthesizer *Synthesizer, topK int) *QueryEngine {
	return &QueryEngine{
		retriever:   retriever,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// Query validates the response mode, retrieves the top-K chunks for
// the question and synthesizes an answer. An empty mode means the
// default. An unsupported mode fails before any retrieval happens.
func (e *QueryEngine) Query(ctx context.Context, question, mode string) (*Answer, error) {
	if mode == "" {
		mode = config.DefaultResponseMode
	}
	if !config.IsSupportedResponseMode(mode) {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			domain.ErrUnsupportedResponseMode, mode,
			strings.Join(config.SupportedResponseModes(), ", "))
	}

	chunks, err := e.retriever.Retrieve(ctx, question, e.topK)
	if err != nil {
		return nil, domain.WrapProvider("retrieve context", err)
	}

	text, err := e.synthesizer.Synthesize(ctx, question, mode, chunks)
	if err != nil {
		return nil, err
	}

	return &Answer{Text: text, Sources: chunks}, nil
}
