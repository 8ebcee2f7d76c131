// Package storage persists documents and their chunks in SQLite.
// Uses modernc.org/sqlite for pure-Go SQLite support.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the documents and document_chunks
// relations.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDataDir returns the default data directory following the XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/docuchat"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "docuchat")
}

// DefaultDBPath returns the default database file path.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "docuchat.db")
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL for concurrent readers, foreign keys so chunks follow their document
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

// OpenInMemory creates an in-memory database (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}

	store := &Store{db: db, path: ":memory:"}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(Schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Health reports whether the database is reachable.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertDocument writes the primary document record.
func (s *Store) InsertDocument(ctx context.Context, doc *Document) error {
	var metadata any
	if doc.Metadata != nil {
		encoded, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("%w: encode metadata: %v", ErrPersistenceFailed, err)
		}
		metadata = string(encoded)
	}

	var embedding any
	if doc.Embedding != nil {
		embedding = vectorToBlob(doc.Embedding)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, type, metadata, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.Content, doc.Type, metadata, embedding, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert document: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// InsertChunks writes all chunks of one document in a single transaction.
func (s *Store) InsertChunks(ctx context.Context, chunks []*DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin chunk transaction: %v", ErrPersistenceFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks (id, document_id, content, embedding, chunk_index)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare chunk insert: %v", ErrPersistenceFailed, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content,
			vectorToBlob(chunk.Embedding), chunk.ChunkIndex); err != nil {
			return fmt.Errorf("%w: insert chunk %d: %v", ErrPersistenceFailed, chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit chunks: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// GetDocument retrieves a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, type, metadata, embedding, created_at, updated_at
		FROM documents
		WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document: %v", ErrPersistenceFailed, err)
	}
	return doc, nil
}

// ListDocuments returns documents newest first. A limit <= 0 returns all.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]*Document, error) {
	query := `
		SELECT id, title, content, type, metadata, embedding, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", ErrPersistenceFailed, err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", ErrPersistenceFailed, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", ErrPersistenceFailed, err)
	}
	return docs, nil
}

// ChunksByDocument returns a document's chunks in index order.
func (s *Store) ChunksByDocument(ctx context.Context, documentID string) ([]*DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, content, embedding, chunk_index
		FROM document_chunks
		WHERE document_id = ?
		ORDER BY chunk_index ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: chunks by document: %v", ErrPersistenceFailed, err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []*DocumentChunk
	for rows.Next() {
		var (
			chunk DocumentChunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &blob, &chunk.ChunkIndex); err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %v", ErrPersistenceFailed, err)
		}
		vector, err := blobToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: decode chunk vector: %v", ErrPersistenceFailed, err)
		}
		chunk.Embedding = vector
		chunks = append(chunks, &chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: chunks by document: %v", ErrPersistenceFailed, err)
	}
	return chunks, nil
}

// DeleteDocument removes a document and all of its chunks. Chunks go first so
// a concurrent reader never sees chunks without their parent.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin delete: %v", ErrPersistenceFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete chunks: %v", ErrPersistenceFailed, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete document: %v", ErrPersistenceFailed, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete document: %v", ErrPersistenceFailed, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit delete: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// CountDocuments returns the number of stored documents.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count documents: %v", ErrPersistenceFailed, err)
	}
	return count, nil
}

// CountChunks returns the number of stored chunks.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count chunks: %v", ErrPersistenceFailed, err)
	}
	return count, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc      Document
		metadata sql.NullString
		blob     []byte
	)
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Type,
		&metadata, &blob, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	if metadata.Valid && metadata.String != "" {
		var meta DocumentMetadata
		if err := json.Unmarshal([]byte(metadata.String), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		doc.Metadata = &meta
	}

	if len(blob) > 0 {
		vector, err := blobToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode vector: %w", err)
		}
		doc.Embedding = vector
	}

	return &doc, nil
}
