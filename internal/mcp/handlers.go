package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/ingest"
	"github.com/docuchat/docuchat/internal/query"
	"github.com/docuchat/docuchat/internal/storage"
)

// summarize converts a stored document to its outward-facing view.
func summarize(doc *storage.Document) *DocumentSummary {
	summary := &DocumentSummary{
		ID:        doc.ID,
		Title:     doc.Title,
		Type:      doc.Type,
		CreatedAt: doc.CreatedAt,
	}
	if doc.Metadata != nil {
		summary.SizeBytes = doc.Metadata.Size
		summary.Pages = doc.Metadata.Pages
	}
	return summary
}

// makeUploadHandler creates the upload_document tool handler.
// Typed ingestion failures (unsupported type, oversized payload, extraction
// errors) come back in the envelope; anything unexpected is a tool error.
func makeUploadHandler(pipeline *ingest.Pipeline) func(
	context.Context, *mcp.CallToolRequest, UploadDocumentInput,
) (*mcp.CallToolResult, UploadDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UploadDocumentInput) (
		*mcp.CallToolResult, UploadDocumentOutput, error,
	) {
		if input.Filename == "" {
			return nil, UploadDocumentOutput{Error: "filename is required"}, nil
		}
		data, err := base64.StdEncoding.DecodeString(input.Data)
		if err != nil {
			return nil, UploadDocumentOutput{Error: "data is not valid base64"}, nil
		}

		result, err := pipeline.Ingest(ctx, data, input.Filename)
		if err != nil {
			switch {
			case errors.Is(err, extract.ErrUnsupportedFileType),
				errors.Is(err, ingest.ErrPayloadTooLarge),
				errors.Is(err, extract.ErrExtractionFailed):
				return nil, UploadDocumentOutput{Error: err.Error()}, nil
			default:
				return nil, UploadDocumentOutput{}, fmt.Errorf("ingestion failed: %w", err)
			}
		}

		return nil, UploadDocumentOutput{
			Success:         true,
			Document:        summarize(result.Document),
			ChunkCount:      result.ChunkCount,
			ChunksPersisted: result.ChunksPersisted,
		}, nil
	}
}

// makeChatHandler creates the chat tool handler.
func makeChatHandler(pipeline *query.Pipeline) func(
	context.Context, *mcp.CallToolRequest, ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ChatInput) (
		*mcp.CallToolResult, ChatOutput, error,
	) {
		var image []byte
		if input.Image != "" {
			decoded, err := base64.StdEncoding.DecodeString(input.Image)
			if err != nil {
				return nil, ChatOutput{Error: "image is not valid base64"}, nil
			}
			image = decoded
		}

		resp, err := pipeline.Answer(ctx, &query.Request{
			Message:   input.Message,
			Image:     image,
			ImageMIME: input.ImageMimeType,
		})
		if err != nil {
			if errors.Is(err, query.ErrEmptyRequest) {
				return nil, ChatOutput{Error: "message or image required"}, nil
			}
			return nil, ChatOutput{}, fmt.Errorf("chat failed: %w", err)
		}

		return nil, ChatOutput{
			Success:            true,
			Reply:              resp.Reply,
			ContextDocumentIDs: resp.ContextDocumentIDs,
		}, nil
	}
}

// makeListHandler creates the list_documents tool handler.
func makeListHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListDocumentsInput) (
		*mcp.CallToolResult, ListDocumentsOutput, error,
	) {
		docs, err := store.ListDocuments(ctx, 0)
		if err != nil {
			return nil, ListDocumentsOutput{}, fmt.Errorf("failed to list documents: %w", err)
		}

		summaries := make([]DocumentSummary, 0, len(docs))
		for _, doc := range docs {
			summaries = append(summaries, *summarize(doc))
		}

		return nil, ListDocumentsOutput{
			Success:   true,
			Documents: summaries,
			Count:     len(summaries),
		}, nil
	}
}

// makeGetHandler creates the get_document tool handler.
func makeGetHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetDocumentInput) (
		*mcp.CallToolResult, GetDocumentOutput, error,
	) {
		doc, err := store.GetDocument(ctx, input.ID)
		if err != nil {
			if errors.Is(err, storage.ErrDocumentNotFound) {
				return nil, GetDocumentOutput{Success: true, Found: false}, nil
			}
			return nil, GetDocumentOutput{}, fmt.Errorf("failed to fetch document: %w", err)
		}

		chunks, err := store.ChunksByDocument(ctx, doc.ID)
		if err != nil {
			return nil, GetDocumentOutput{}, fmt.Errorf("failed to fetch chunks: %w", err)
		}

		return nil, GetDocumentOutput{
			Success:    true,
			Found:      true,
			Document:   summarize(doc),
			Content:    doc.Content,
			ChunkCount: len(chunks),
		}, nil
	}
}

// makeDeleteHandler creates the delete_document tool handler.
func makeDeleteHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteDocumentInput) (
		*mcp.CallToolResult, DeleteDocumentOutput, error,
	) {
		if err := store.DeleteDocument(ctx, input.ID); err != nil {
			if errors.Is(err, storage.ErrDocumentNotFound) {
				return nil, DeleteDocumentOutput{Error: fmt.Sprintf("document %s not found", input.ID)}, nil
			}
			return nil, DeleteDocumentOutput{}, fmt.Errorf("failed to delete document: %w", err)
		}

		return nil, DeleteDocumentOutput{
			Success: true,
			Message: fmt.Sprintf("document %s deleted", input.ID),
		}, nil
	}
}

// makeStatusHandler creates the get_status tool handler.
func makeStatusHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		docs, err := store.CountDocuments(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count documents: %w", err)
		}
		chunks, err := store.CountChunks(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count chunks: %w", err)
		}

		return nil, StatusOutput{
			Success:      true,
			Documents:    docs,
			Chunks:       chunks,
			DatabasePath: store.Path(),
		}, nil
	}
}
