// ABOUTME: SQLite schema for documents, chunks, and the lexical search index
// ABOUTME: chunks_fts is an external-content FTS5 table kept in sync by triggers
package sqlite

// Schema contains all SQL statements for database initialization.
// The porter tokenizer gives the lexical ranking stemmed matching
// (work/works/working all hit the same term).
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
    document_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    title         TEXT NOT NULL CHECK (length(title) > 0 AND length(title) <= 500),
    content_kind  TEXT NOT NULL CHECK (content_kind IN ('audio', 'document', 'web', 'image')),
    source_url    TEXT,
    file_path     TEXT,
    file_size     INTEGER,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME,
    status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processing', 'completed', 'failed')),
    error_message TEXT
);

CREATE TABLE IF NOT EXISTS chunks (
    chunk_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
    chunk_text  TEXT NOT NULL CHECK (length(chunk_text) > 0),
    chunk_index INTEGER NOT NULL,
    embedding   BLOB NOT NULL,
    created_at  DATETIME NOT NULL,
    UNIQUE (document_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(content_kind);
CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
CREATE INDEX IF NOT EXISTS idx_chunks_created ON chunks(created_at);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    chunk_text,
    content='chunks',
    content_rowid='chunk_id',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_fts_insert AFTER INSERT ON chunks BEGIN
    INSERT INTO chunks_fts(rowid, chunk_text) VALUES (new.chunk_id, new.chunk_text);
END;

CREATE TRIGGER IF NOT EXISTS chunks_fts_delete AFTER DELETE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, chunk_text) VALUES ('delete', old.chunk_id, old.chunk_text);
END;
`

// SchemaVersion is the current schema version
const SchemaVersion = 1
