// Package query answers user questions, grounding replies in retrieved
// document context and routing image attachments through vision analysis.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docuchat/docuchat/internal/chat"
	"github.com/docuchat/docuchat/internal/similarity"
	"github.com/docuchat/docuchat/internal/storage"
)

const (
	// CandidateLimit is how many recent documents are pulled and scored per
	// query. There is no server-side vector filtering; the stored embeddings
	// are compared client side.
	CandidateLimit = 5

	// contextCharLimit caps how much of each document's content goes into
	// the assembled context.
	contextCharLimit = 1000
)

// ErrEmptyRequest is returned when a request carries neither text nor image.
var ErrEmptyRequest = errors.New("message or image required")

// Embedder turns a query into a vector. Implemented by embedding.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentSource supplies candidate documents. Implemented by storage.Store.
type DocumentSource interface {
	ListDocuments(ctx context.Context, limit int) ([]*storage.Document, error)
}

// Completer produces assistant replies. Implemented by chat.Client.
type Completer interface {
	Complete(ctx context.Context, messages []chat.Message, contextText string) (string, error)
	AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// Request is one user query: text, image, or both.
type Request struct {
	Message   string
	Image     []byte
	ImageMIME string
}

// Response is the assistant reply plus the documents that grounded it.
type Response struct {
	Reply              string
	ContextDocumentIDs []string
}

// Pipeline orchestrates query answering.
type Pipeline struct {
	embedder  Embedder
	source    DocumentSource
	completer Completer
	logger    *slog.Logger
}

// NewPipeline creates a query pipeline with the given components.
func NewPipeline(embedder Embedder, source DocumentSource, completer Completer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		embedder:  embedder,
		source:    source,
		completer: completer,
		logger:    logger,
	}
}

// Answer handles one request. Image requests go through vision analysis,
// optionally followed by a text completion combining the analysis with the
// user's message. Text requests are grounded in retrieved context; a failed
// context search degrades to a contextless answer instead of failing the
// request.
func (p *Pipeline) Answer(ctx context.Context, req *Request) (*Response, error) {
	if req.Message == "" && len(req.Image) == 0 {
		return nil, ErrEmptyRequest
	}

	if len(req.Image) > 0 {
		return p.answerWithImage(ctx, req)
	}

	contextText, refs, err := p.searchContext(ctx, req.Message)
	if err != nil {
		// Availability over completeness: answer without context.
		p.logger.Warn("Context search failed, answering without context", "error", err)
		contextText, refs = "", nil
	}

	reply, err := p.completer.Complete(ctx, []chat.Message{
		{Role: chat.RoleUser, Content: req.Message},
	}, contextText)
	if err != nil {
		return nil, err
	}

	return &Response{Reply: reply, ContextDocumentIDs: refs}, nil
}

// answerWithImage runs vision analysis, then combines it with the user's
// text in a follow-up completion when text is present.
func (p *Pipeline) answerWithImage(ctx context.Context, req *Request) (*Response, error) {
	analysis, err := p.completer.AnalyzeImage(ctx, req.Image, req.ImageMIME, req.Message)
	if err != nil {
		return nil, err
	}

	if req.Message == "" {
		return &Response{Reply: analysis}, nil
	}

	combined := fmt.Sprintf("%s\n\nImage analysis: %s", req.Message, analysis)
	reply, err := p.completer.Complete(ctx, []chat.Message{
		{Role: chat.RoleUser, Content: combined},
	}, "")
	if err != nil {
		return nil, err
	}
	return &Response{Reply: reply}, nil
}

// searchContext embeds the query, scores it against the primary embeddings of
// the most recent documents, and assembles the context string from the
// surviving matches. An explicit error return leaves the fallback decision to
// the caller.
func (p *Pipeline) searchContext(ctx context.Context, message string) (string, []string, error) {
	queryVector, err := p.embedder.Embed(ctx, message)
	if err != nil {
		return "", nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := p.source.ListDocuments(ctx, CandidateLimit)
	if err != nil {
		return "", nil, fmt.Errorf("fetch candidates: %w", err)
	}

	byID := make(map[string]*storage.Document, len(docs))
	candidates := make([]similarity.Candidate, 0, len(docs))
	for _, doc := range docs {
		if doc.Embedding == nil {
			continue
		}
		byID[doc.ID] = doc
		candidates = append(candidates, similarity.Candidate{ID: doc.ID, Vector: doc.Embedding})
	}

	matches := similarity.Rank(queryVector, candidates, similarity.RelevanceThreshold, similarity.TopK)
	if len(matches) == 0 {
		return "", nil, nil
	}

	parts := make([]string, 0, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		doc := byID[m.ID]
		content := doc.Content
		if len(content) > contextCharLimit {
			content = content[:contextCharLimit]
		}
		parts = append(parts, fmt.Sprintf("Document: %s\nContent: %s", doc.Title, content))
		refs = append(refs, doc.ID)
	}

	p.logger.Debug("Assembled context", "documents", len(refs))
	return strings.Join(parts, "\n\n"), refs, nil
}
