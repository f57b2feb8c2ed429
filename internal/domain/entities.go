package domain

import "time"

// Document is one logical unit of extracted text. Formats with internal
// structure (PDF pages, workbook sheets, slide decks) yield one Document
// per part so provenance survives chunking.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Chunk is a retrieval unit cut from a single document.
type Chunk struct {
	ID       string
	DocID    string
	Position int
	Text     string
	Metadata map[string]string
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Fragment is a piece of text produced by a format extractor before it
// becomes a Document.
type Fragment struct {
	Text     string
	Metadata map[string]string
}

// CollectionInfo describes one stored collection.
type CollectionInfo struct {
	Name           string
	Count          int
	EmbeddingModel string
	Dimension      int
	CreatedAt      time.Time
}

// SampleRecord is a stored chunk as returned by collection inspection.
// VectorHead holds the first few embedding values for display.
type SampleRecord struct {
	ID         string
	Text       string
	Metadata   map[string]string
	Dimension  int
	VectorHead []float32
}
