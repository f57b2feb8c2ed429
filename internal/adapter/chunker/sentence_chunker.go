package chunker

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

// sentenceEnd matches sentence-final punctuation (with trailing quotes or
// brackets) followed by whitespace, or a paragraph break.
var sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*(\s+|\z)|\n{2,}`)

// SentenceChunker splits documents on sentence boundaries and packs
// sentences into token-bounded chunks with a configurable overlap.
type SentenceChunker struct {
	maxTokens int
	overlap   int
}

func NewSentenceChunker(maxTokens, overlap int) *SentenceChunker {
	return &SentenceChunker{
		maxTokens: maxTokens,
		overlap:   overlap,
	}
}

func (c *SentenceChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	sentences := splitOversized(splitSentences(doc.Text), c.maxTokens)
	if len(sentences) == 0 {
		return nil, nil
	}

	tokens := make([]int, len(sentences))
	for i, s := range sentences {
		tokens[i] = ApproxTokens(s)
	}

	var chunks []domain.Chunk
	position := 0
	start := 0

	for start < len(sentences) {
		end := start
		total := 0
		for end < len(sentences) {
			if total > 0 && total+tokens[end] > c.maxTokens {
				break
			}
			total += tokens[end]
			end++
		}

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			DocID:    doc.ID,
			Position: position,
			Text:     strings.Join(sentences[start:end], " "),
			Metadata: copyMetadata(doc.Metadata),
		})
		position++

		if end >= len(sentences) {
			break
		}

		newStart := end
		acc := 0
		for newStart > start && acc < c.overlap {
			newStart--
			acc += tokens[newStart]
		}
		if newStart <= start {
			newStart = start + 1
		}
		start = newStart
	}

	return chunks, nil
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// splitOversized breaks sentences that alone exceed the token budget into
// word-bounded pieces so the packing loop always makes progress.
func splitOversized(sentences []string, maxTokens int) []string {
	perPiece := int(float64(maxTokens) / tokensPerWord)
	if perPiece < 1 {
		perPiece = 1
	}

	var out []string
	for _, s := range sentences {
		if ApproxTokens(s) <= maxTokens {
			out = append(out, s)
			continue
		}
		words := strings.Fields(s)
		for i := 0; i < len(words); i += perPiece {
			j := i + perPiece
			if j > len(words) {
				j = len(words)
			}
			out = append(out, strings.Join(words[i:j], " "))
		}
	}
	return out
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
