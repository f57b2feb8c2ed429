package usecase

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/adapter/chunker"
	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

var prompts = template.Must(template.ParseFS(promptTemplates, "templates/*.txt"))

const answerSystem = "You are a document analysis assistant. Answer strictly from the provided context. When the context does not contain the answer, say so instead of guessing."

// NoContextAnswer is returned without calling the model when retrieval
// produced nothing to ground an answer on.
const NoContextAnswer = "No relevant context was found to answer the question."

type promptData struct {
	Question string
	Context  string
	Existing string
}

// Synthesizer turns retrieved chunks plus a question into an answer
// using one of the supported assembly strategies.
type Synthesizer struct {
	llm         port.LLM
	tokenBudget int
}

func NewSynthesizer(llm port.LLM, tokenBudget int) *Synthesizer {
	return &Synthesizer{
		llm:         llm,
		tokenBudget: tokenBudget,
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question, mode string, chunks []domain.ScoredChunk) (string, error) {
	if len(chunks) == 0 {
		return NoContextAnswer, nil
	}

	switch mode {
	case config.ResponseModeCompact:
		return s.compact(ctx, question, chunks)
	case config.ResponseModeRefine:
		return s.refineAcross(ctx, question, chunkTexts(chunks))
	case config.ResponseModeTreeSummarize:
		return s.treeSummarize(ctx, question, chunks)
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedResponseMode, mode)
}

// compact concatenates chunks into as few context windows as the token
// budget allows, answers over the first window and refines over the
// rest.
func (s *Synthesizer) compact(ctx context.Context, question string, chunks []domain.ScoredChunk) (string, error) {
	windows := packTexts(chunkTexts(chunks), s.tokenBudget)
	contexts := make([]string, len(windows))
	for i, window := range windows {
		contexts[i] = strings.Join(window, "\n\n")
	}
	return s.refineAcross(ctx, question, contexts)
}

// refineAcross answers over the first context and then folds each
// further context into the answer with the refine prompt.
func (s *Synthesizer) refineAcross(ctx context.Context, question string, contexts []string) (string, error) {
	var answer string
	for i, contextText := range contexts {
		data := promptData{Question: question, Context: contextText}
		name := "qa.txt"
		if i > 0 {
			name = "refine.txt"
			data.Existing = answer
		}
		prompt, err := render(name, data)
		if err != nil {
			return "", err
		}
		answer, err = s.complete(ctx, prompt)
		if err != nil {
			return "", err
		}
	}
	return answer, nil
}

// treeSummarize answers the question over groups of chunks and then
// recursively over the intermediate answers until one remains.
func (s *Synthesizer) treeSummarize(ctx context.Context, question string, chunks []domain.ScoredChunk) (string, error) {
	texts := chunkTexts(chunks)
	for {
		groups := packTexts(texts, s.tokenBudget)
		if len(groups) >= len(texts) && len(texts) > 1 {
			// Oversized inputs would never converge; force pairs.
			groups = pairGroups(texts)
		}

		answers := make([]string, 0, len(groups))
		for _, group := range groups {
			prompt, err := render("summarize.txt", promptData{
				Question: question,
				Context:  strings.Join(group, "\n\n"),
			})
			if err != nil {
				return "", err
			}
			answer, err := s.complete(ctx, prompt)
			if err != nil {
				return "", err
			}
			answers = append(answers, answer)
		}

		if len(answers) == 1 {
			return answers[0], nil
		}
		texts = answers
	}
}

func (s *Synthesizer) complete(ctx context.Context, prompt string) (string, error) {
	answer, err := s.llm.Complete(ctx, answerSystem, prompt)
	if err != nil {
		return "", domain.WrapProvider("synthesize answer", err)
	}
	return answer, nil
}

func render(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

func chunkTexts(chunks []domain.ScoredChunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Text
	}
	return texts
}

// packTexts groups texts in order so each group stays within the token
// budget. A text that alone exceeds the budget gets its own group.
func packTexts(texts []string, budget int) [][]string {
	var groups [][]string
	var current []string
	tokens := 0

	for _, text := range texts {
		n := chunker.ApproxTokens(text)
		if len(current) > 0 && tokens+n > budget {
			groups = append(groups, current)
			current = nil
			tokens = 0
		}
		current = append(current, text)
		tokens += n
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func pairGroups(texts []string) [][]string {
	var groups [][]string
	for i := 0; i < len(texts); i += 2 {
		j := i + 2
		if j > len(texts) {
			j = len(texts)
		}
		groups = append(groups, texts[i:j])
	}
	return groups
}
