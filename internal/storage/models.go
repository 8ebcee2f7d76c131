package storage

import (
	"fmt"
	"time"
)

// Document is a stored upload. Created once at ingestion and immutable
// afterwards except deletion.
type Document struct {
	ID        string // UUID
	Title     string // Filename without extension
	Content   string // Full extracted text
	Type      string // pdf, docx, txt or image
	Metadata  *DocumentMetadata
	Embedding []float32 // Primary vector (chunk 0's embedding); nil when chunking produced nothing
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentMetadata carries upload details, serialized as JSON in one column.
type DocumentMetadata struct {
	Author   string `json:"author,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// DocumentChunk is one overlapping window of a document's text with its
// embedding. Chunk lifetime is bounded by the parent document's.
type DocumentChunk struct {
	ID         string // Deterministic: <docID>_chunk_<index>
	DocumentID string
	Content    string
	Embedding  []float32
	ChunkIndex int // Contiguous from 0 in text order
}

// ChunkID derives the deterministic chunk identifier from its parent
// document id and sequential index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536
