// Package mcp exposes the document-chat pipelines as MCP tools.
package mcp

import "time"

// DocumentSummary is the outward-facing view of a stored document.
type DocumentSummary struct {
	// ID is the document identifier.
	ID string `json:"id"`
	// Title is the upload's filename without extension.
	Title string `json:"title"`
	// Type is the document type: pdf, docx, txt or image.
	Type string `json:"type"`
	// SizeBytes is the raw upload size.
	SizeBytes int64 `json:"size_bytes,omitempty"`
	// Pages is the page count for formats that have one.
	Pages int `json:"pages,omitempty"`
	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}

// UploadDocumentInput defines the input parameters for the upload_document tool.
type UploadDocumentInput struct {
	// Filename is the original filename; its extension selects the extractor.
	Filename string `json:"filename" jsonschema:"required,description=Original filename including extension (pdf docx txt md png jpg jpeg)"`
	// Data is the file content, base64 encoded.
	Data string `json:"data" jsonschema:"required,description=Base64-encoded file bytes"`
}

// UploadDocumentOutput reports the ingestion result.
type UploadDocumentOutput struct {
	Success bool `json:"success"`
	// Document describes the stored document on success.
	Document *DocumentSummary `json:"document,omitempty"`
	// ChunkCount is how many chunks the document produced.
	ChunkCount int `json:"chunk_count,omitempty"`
	// ChunksPersisted is false when the document was stored but its chunks
	// were not; the document remains retrievable, semantic search degrades.
	ChunksPersisted bool `json:"chunks_persisted,omitempty"`
	// Error describes a typed ingestion failure.
	Error string `json:"error,omitempty"`
}

// ChatInput defines the input parameters for the chat tool.
type ChatInput struct {
	// Message is the user's question. Optional when an image is attached.
	Message string `json:"message,omitempty" jsonschema:"description=The user's question"`
	// Image is an optional attached image, base64 encoded.
	Image string `json:"image,omitempty" jsonschema:"description=Base64-encoded image bytes for vision analysis"`
	// ImageMimeType is the attached image's MIME type (image/png or image/jpeg).
	ImageMimeType string `json:"image_mime_type,omitempty" jsonschema:"description=MIME type of the attached image"`
}

// ChatOutput contains the assistant reply.
type ChatOutput struct {
	Success bool `json:"success"`
	// Reply is the assistant's answer.
	Reply string `json:"reply,omitempty"`
	// ContextDocumentIDs lists the documents whose content grounded the reply.
	ContextDocumentIDs []string `json:"context_document_ids,omitempty"`
	// Error describes a failure.
	Error string `json:"error,omitempty"`
}

// ListDocumentsInput defines the input parameters for the list_documents tool.
// This tool takes no parameters and lists all stored documents, newest first.
type ListDocumentsInput struct {
	// No input parameters required
}

// ListDocumentsOutput contains all stored documents.
type ListDocumentsOutput struct {
	Success   bool              `json:"success"`
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
	Error     string            `json:"error,omitempty"`
}

// GetDocumentInput defines the input parameters for the get_document tool.
type GetDocumentInput struct {
	// ID is the document identifier to retrieve.
	ID string `json:"id" jsonschema:"required,description=The document id to retrieve"`
}

// GetDocumentOutput contains the retrieved document.
type GetDocumentOutput struct {
	Success bool `json:"success"`
	// Found indicates whether the document exists.
	Found bool `json:"found"`
	// Document describes the document when found.
	Document *DocumentSummary `json:"document,omitempty"`
	// Content is the full extracted text.
	Content string `json:"content,omitempty"`
	// ChunkCount is how many chunks are stored for the document.
	ChunkCount int    `json:"chunk_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// DeleteDocumentInput defines the input parameters for the delete_document tool.
type DeleteDocumentInput struct {
	// ID is the document identifier to delete.
	ID string `json:"id" jsonschema:"required,description=The document id to delete"`
}

// DeleteDocumentOutput reports the deletion result.
type DeleteDocumentOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusInput defines the input parameters for the get_status tool.
// This tool takes no parameters.
type StatusInput struct {
	// No input parameters required
}

// StatusOutput reports store-level counters.
type StatusOutput struct {
	Success      bool   `json:"success"`
	Documents    int    `json:"documents"`
	Chunks       int    `json:"chunks"`
	DatabasePath string `json:"database_path"`
	Error        string `json:"error,omitempty"`
}
