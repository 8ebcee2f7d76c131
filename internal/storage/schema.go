package storage

// Schema contains all SQL statements for database initialization.
const Schema = `
-- Uploaded documents with their primary embedding vector
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('pdf', 'docx', 'txt', 'image')),
    metadata TEXT,
    embedding BLOB,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Overlapping text windows with per-chunk embeddings
CREATE TABLE IF NOT EXISTS document_chunks (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    embedding BLOB NOT NULL,
    chunk_index INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
CREATE INDEX IF NOT EXISTS idx_document_chunks_document_id ON document_chunks(document_id);
`
