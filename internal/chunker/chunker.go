package chunker

import "fmt"

const (
	// DefaultChunkSize is the window size in characters used at ingestion.
	DefaultChunkSize = 1000

	// DefaultOverlap is how many characters consecutive chunks share.
	DefaultOverlap = 200
)

// Chunk is one window of a document's extracted text.
type Chunk struct {
	Index   int    // Position in document (0, 1, 2...)
	Content string // Window of the source text
}

// Chunker splits text into fixed-size overlapping character windows.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap.
// Requires size > 0 and 0 <= overlap < size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// NewDefaultChunker creates a chunker with the ingestion defaults (1000, 200).
func NewDefaultChunker() *Chunker {
	c, _ := NewChunker(DefaultChunkSize, DefaultOverlap)
	return c
}

// Split windows the text into chunks. Chunk i starts at offset i*(size-overlap)
// and spans at most size characters, so consecutive chunks share exactly
// overlap characters and the windows cover the whole input. Empty input
// yields no chunks; input no longer than one window yields a single chunk
// equal to the input. The operation is deterministic and byte-oriented.
func (c *Chunker) Split(text string) []Chunk {
	if len(text) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []Chunk
	for start := 0; ; start += step {
		end := start + c.size
		if end >= len(text) {
			chunks = append(chunks, Chunk{Index: len(chunks), Content: text[start:]})
			return chunks
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Content: text[start:end]})
	}
}

// Texts returns just the chunk contents, in index order.
func Texts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	return texts
}
