package storage

import "errors"

var (
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
