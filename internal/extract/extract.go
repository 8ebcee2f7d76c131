// Package extract turns uploaded file bytes into plain text for ingestion.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFileType is returned for extensions outside the supported set.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrExtractionFailed wraps format-specific parse failures.
	ErrExtractionFailed = errors.New("extraction failed")
)

// FileType is the closed set of stored document types.
type FileType string

const (
	TypePDF   FileType = "pdf"
	TypeDOCX  FileType = "docx"
	TypeTXT   FileType = "txt"
	TypeImage FileType = "image"
)

// Result is the extracted form of an upload.
type Result struct {
	Title    string   // Filename without extension
	Content  string   // Plain extracted text
	Type     FileType
	MimeType string
	Pages    int // 0 when the format has no page concept
}

// DetectType maps a filename extension to a document type. Markdown files are
// extracted to plain text and stored as txt. Returns false for unsupported
// extensions.
func DetectType(filename string) (FileType, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF, true
	case ".docx":
		return TypeDOCX, true
	case ".txt", ".md", ".markdown":
		return TypeTXT, true
	case ".png", ".jpg", ".jpeg":
		return TypeImage, true
	default:
		return "", false
	}
}

// Extract dispatches to the extractor matching the filename's extension.
// Unsupported extensions fail with ErrUnsupportedFileType before any parsing.
func Extract(data []byte, filename string) (*Result, error) {
	fileType, ok := DetectType(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(filename))
	}

	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	ext := strings.ToLower(filepath.Ext(filename))

	switch fileType {
	case TypePDF:
		text, pages, err := extractPDF(data)
		if err != nil {
			return nil, fmt.Errorf("%w: pdf: %v", ErrExtractionFailed, err)
		}
		return &Result{
			Title:    title,
			Content:  text,
			Type:     TypePDF,
			MimeType: "application/pdf",
			Pages:    pages,
		}, nil

	case TypeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return nil, fmt.Errorf("%w: docx: %v", ErrExtractionFailed, err)
		}
		return &Result{
			Title:    title,
			Content:  text,
			Type:     TypeDOCX,
			MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}, nil

	case TypeTXT:
		content := string(data)
		if ext == ".md" || ext == ".markdown" {
			content = markdownToText(data)
		}
		return &Result{
			Title:    title,
			Content:  content,
			Type:     TypeTXT,
			MimeType: "text/plain",
		}, nil

	case TypeImage:
		mime := "image/jpeg"
		if ext == ".png" {
			mime = "image/png"
		}
		// Images carry no extractable text; the placeholder keeps them
		// listable while vision handles their content at query time.
		return &Result{
			Title:    title,
			Content:  fmt.Sprintf("Image file: %s", filepath.Base(filename)),
			Type:     TypeImage,
			MimeType: mime,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
}
