package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/chunker"
	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/storage"
)

// fakeEmbedder returns a deterministic vector per text, or fails on demand.
type fakeEmbedder struct {
	calls  int
	failAt int // 1-based call index to fail on; 0 never fails
}

func (f *fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failAt != 0 && f.calls >= f.failAt {
		return nil, errors.New("embedding backend down")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), float32(i)}
	}
	return vectors, nil
}

// fakeStore records writes and can fail either phase.
type fakeStore struct {
	docs       []*storage.Document
	chunks     []*storage.DocumentChunk
	failDoc    bool
	failChunks bool
}

func (f *fakeStore) InsertDocument(ctx context.Context, doc *storage.Document) error {
	if f.failDoc {
		return fmt.Errorf("%w: disk full", storage.ErrPersistenceFailed)
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeStore) InsertChunks(ctx context.Context, chunks []*storage.DocumentChunk) error {
	if f.failChunks {
		return fmt.Errorf("%w: disk full", storage.ErrPersistenceFailed)
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestPipeline(extractor ExtractFunc, embedder Embedder, store Store) *Pipeline {
	c, _ := chunker.NewChunker(10, 2)
	return NewPipeline(extractor, c, embedder, store, quietLogger())
}

func TestIngest_TextDocument(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(nil, &fakeEmbedder{}, store)

	content := "alpha beta gamma delta epsilon zeta eta theta"
	result, err := p.Ingest(context.Background(), []byte(content), "greek.txt")
	require.NoError(t, err)

	assert.True(t, result.ChunksPersisted)
	require.Len(t, store.docs, 1)
	doc := store.docs[0]
	assert.Equal(t, "greek", doc.Title)
	assert.Equal(t, content, doc.Content)
	assert.Equal(t, "txt", doc.Type)
	require.NotNil(t, doc.Metadata)
	assert.Equal(t, int64(len(content)), doc.Metadata.Size)
	assert.Equal(t, "text/plain", doc.Metadata.MimeType)

	// Chunks are contiguous from 0 in original order with deterministic ids.
	require.Equal(t, result.ChunkCount, len(store.chunks))
	for i, chunk := range store.chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, storage.ChunkID(doc.ID, i), chunk.ID)
		assert.Equal(t, doc.ID, chunk.DocumentID)
		assert.NotNil(t, chunk.Embedding)
	}

	// Document carries chunk 0's vector as its primary embedding.
	assert.Equal(t, store.chunks[0].Embedding, doc.Embedding)
}

func TestIngest_OversizedPayloadRejected(t *testing.T) {
	extractorCalled := false
	extractor := func(data []byte, filename string) (*extract.Result, error) {
		extractorCalled = true
		return &extract.Result{Type: extract.TypeTXT, Content: "x"}, nil
	}
	p := newTestPipeline(extractor, &fakeEmbedder{}, &fakeStore{})

	oversized := make([]byte, 11*1024*1024)
	_, err := p.Ingest(context.Background(), oversized, "big.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPayloadTooLarge))
	assert.False(t, extractorCalled, "extraction must not run for oversized uploads")
}

func TestIngest_UnsupportedTypeRejectedBeforeExtraction(t *testing.T) {
	extractorCalled := false
	extractor := func(data []byte, filename string) (*extract.Result, error) {
		extractorCalled = true
		return &extract.Result{Type: extract.TypeTXT, Content: "x"}, nil
	}
	p := newTestPipeline(extractor, &fakeEmbedder{}, &fakeStore{})

	_, err := p.Ingest(context.Background(), []byte("data"), "report.xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrUnsupportedFileType))
	assert.False(t, extractorCalled, "extraction must not run for unsupported types")
}

func TestIngest_EmbeddingFailureAbortsEverything(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(nil, &fakeEmbedder{failAt: 1}, store)

	_, err := p.Ingest(context.Background(), []byte("some content"), "doc.txt")
	require.Error(t, err)
	assert.Empty(t, store.docs, "no document row on embedding failure")
	assert.Empty(t, store.chunks)
}

func TestIngest_ChunkWriteFailureKeepsDocument(t *testing.T) {
	store := &fakeStore{failChunks: true}
	p := newTestPipeline(nil, &fakeEmbedder{}, store)

	result, err := p.Ingest(context.Background(), []byte("partial but present"), "doc.txt")
	require.NoError(t, err, "chunk write failure must not fail the ingestion")

	assert.False(t, result.ChunksPersisted)
	require.Len(t, store.docs, 1, "document survives the chunk-write failure")
	assert.Empty(t, store.chunks)
}

func TestIngest_DocumentWriteFailureIsFatal(t *testing.T) {
	store := &fakeStore{failDoc: true}
	p := newTestPipeline(nil, &fakeEmbedder{}, store)

	_, err := p.Ingest(context.Background(), []byte("content"), "doc.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrPersistenceFailed))
	assert.Empty(t, store.chunks)
}

func TestIngest_ExtractionFailure(t *testing.T) {
	extractor := func(data []byte, filename string) (*extract.Result, error) {
		return nil, fmt.Errorf("%w: corrupt file", extract.ErrExtractionFailed)
	}
	p := newTestPipeline(extractor, &fakeEmbedder{}, &fakeStore{})

	_, err := p.Ingest(context.Background(), []byte("junk"), "doc.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrExtractionFailed))
}

func TestIngest_LongDocumentChunkOrder(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(nil, &fakeEmbedder{}, store)

	content := strings.Repeat("abcdefgh", 50)
	result, err := p.Ingest(context.Background(), []byte(content), "long.txt")
	require.NoError(t, err)
	require.Greater(t, result.ChunkCount, 1)

	// Reassembled chunks must reproduce the source in order.
	var b strings.Builder
	for i, chunk := range store.chunks {
		require.Equal(t, i, chunk.ChunkIndex)
		if i == 0 {
			b.WriteString(chunk.Content)
		} else {
			b.WriteString(chunk.Content[2:]) // drop the 2-char overlap
		}
	}
	assert.Equal(t, content, b.String())
}
