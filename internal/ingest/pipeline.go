// Package ingest runs the document ingestion pipeline:
// extract -> chunk -> embed -> persist.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat/docuchat/internal/chunker"
	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/storage"
)

// MaxUploadBytes is the raw upload size limit (10 MiB). Larger uploads are
// rejected before ingestion begins.
const MaxUploadBytes = 10 * 1024 * 1024

// ErrPayloadTooLarge is returned for uploads over MaxUploadBytes.
var ErrPayloadTooLarge = errors.New("payload too large")

// Embedder turns texts into vectors. Implemented by embedding.Embedder.
type Embedder interface {
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
}

// Store persists documents and chunks. Implemented by storage.Store.
type Store interface {
	InsertDocument(ctx context.Context, doc *storage.Document) error
	InsertChunks(ctx context.Context, chunks []*storage.DocumentChunk) error
}

// ExtractFunc produces plain text from uploaded bytes. Normally extract.Extract.
type ExtractFunc func(data []byte, filename string) (*extract.Result, error)

// Result reports a completed ingestion.
type Result struct {
	Document        *storage.Document
	ChunkCount      int
	ChunksPersisted bool // False when the second-phase chunk write failed
	Duration        time.Duration
}

// Pipeline orchestrates ingestion for one upload at a time. Dependencies are
// injected so tests can substitute doubles; the pipeline itself is stateless.
type Pipeline struct {
	extractor ExtractFunc
	chunker   *chunker.Chunker
	embedder  Embedder
	store     Store
	logger    *slog.Logger
}

// NewPipeline creates an ingestion pipeline with the given components.
func NewPipeline(extractor ExtractFunc, c *chunker.Chunker, embedder Embedder, store Store, logger *slog.Logger) *Pipeline {
	if extractor == nil {
		extractor = extract.Extract
	}
	if c == nil {
		c = chunker.NewDefaultChunker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		chunker:   c,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

// Ingest runs the full pipeline for one upload. Embedding failures abort the
// whole ingestion before anything is written. A chunk-write failure after the
// document write is logged but does not fail the ingestion: the document
// stays retrievable even if per-chunk semantic search for it is incomplete.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, filename string) (*Result, error) {
	start := time.Now()

	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(data), MaxUploadBytes)
	}

	// Reject unknown extensions before any extractor runs.
	if _, ok := extract.DetectType(filename); !ok {
		return nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedFileType, filename)
	}

	extracted, err := p.extractor(data, filename)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	p.logger.Debug("Extracted document", "filename", filename, "chars", len(extracted.Content))

	chunks := p.chunker.Split(extracted.Content)
	p.logger.Debug("Chunked document", "filename", filename, "chunks", len(chunks))

	embeddings, err := p.embedder.EmbedAll(ctx, chunker.Texts(chunks))
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", filename, err)
	}

	now := time.Now().UTC()
	doc := &storage.Document{
		ID:      uuid.New().String(),
		Title:   extracted.Title,
		Content: extracted.Content,
		Type:    string(extracted.Type),
		Metadata: &storage.DocumentMetadata{
			Pages:    extracted.Pages,
			Size:     int64(len(data)),
			MimeType: extracted.MimeType,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Chunk 0's vector doubles as the document's primary embedding.
	if len(embeddings) > 0 {
		doc.Embedding = embeddings[0]
	}

	if err := p.store.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document %s: %w", filename, err)
	}

	records := make([]*storage.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		records[i] = &storage.DocumentChunk{
			ID:         storage.ChunkID(doc.ID, chunk.Index),
			DocumentID: doc.ID,
			Content:    chunk.Content,
			Embedding:  embeddings[i],
			ChunkIndex: chunk.Index,
		}
	}

	result := &Result{
		Document:        doc,
		ChunkCount:      len(records),
		ChunksPersisted: true,
	}
	if err := p.store.InsertChunks(ctx, records); err != nil {
		// The document row is already written and stays usable; only
		// per-chunk search degrades.
		p.logger.Warn("Failed to persist chunks", "document", doc.ID, "error", err)
		result.ChunksPersisted = false
	}

	result.Duration = time.Since(start)
	p.logger.Info("Ingested document",
		"document", doc.ID,
		"title", doc.Title,
		"type", doc.Type,
		"chunks", result.ChunkCount,
		"duration", result.Duration,
	)
	return result, nil
}
