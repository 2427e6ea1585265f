package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore and driven.VectorIndex.
type documentStore struct {
	store *Store
}

var (
	_ driven.DocumentStore = (*documentStore)(nil)
	_ driven.VectorIndex   = (*documentStore)(nil)
)

const chunkColumns = `c.seq, c.id, c.document_id, c.content, c.embedding,
	c.page_number, c.chunk_index, c.word_count, c.created_at`

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, mime_type, size, status, page_count,
			chunk_count, error_detail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			mime_type = excluded.mime_type,
			size = excluded.size,
			status = excluded.status,
			page_count = excluded.page_count,
			chunk_count = excluded.chunk_count,
			error_detail = excluded.error_detail,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Filename, doc.MIMEType, doc.Size, string(doc.Status), doc.PageCount,
		doc.ChunkCount, doc.ErrorDetail, doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, filename, mime_type, size, status, page_count, chunk_count,
			error_detail, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// ListDocuments returns all documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, filename, mime_type, size, status, page_count, chunk_count,
			error_detail, created_at, updated_at
		FROM documents ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document. Chunks go with it via ON DELETE CASCADE.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// SaveChunks inserts chunks in one transaction. Seq comes from the
// AUTOINCREMENT key and is written back into the caller's slice.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, embedding, dims,
			page_number, chunk_index, word_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	seqs := make([]int64, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		res, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Content,
			vectorArg(c.Embedding), len(c.Embedding),
			c.PageNumber, c.Index, c.WordCount, createdAt.UTC())
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate chunk %s", domain.ErrInvalidInput, c.ID)
			}
			return fmt.Errorf("saving chunk %s: %w", c.ID, err)
		}
		if seqs[i], err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading chunk seq: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	for i := range chunks {
		chunks[i].Seq = seqs[i]
	}
	return nil
}

// GetChunks returns a document's chunks ordered by Index.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c WHERE c.document_id = ?
		ORDER BY c.chunk_index, c.seq
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c WHERE c.id = ?
	`, id)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return chunk, err
}

// Ping checks the database is reachable.
func (s *documentStore) Ping(ctx context.Context) error {
	return s.store.db.PingContext(ctx)
}

// Search scores eligible chunks with vec_cosine inside a read transaction,
// so the dimension check and the scan see the same snapshot.
func (s *documentStore) Search(
	ctx context.Context, query []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	scope, args := searchScope(opts)

	var mismatched int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.embedding IS NOT NULL AND `+scope+` AND c.dims <> ?
	`, append(args, len(query))...).Scan(&mismatched)
	if err != nil {
		return nil, fmt.Errorf("checking dimensions: %w", err)
	}
	if mismatched > 0 {
		return nil, fmt.Errorf("%w: %d stored chunks differ from the %d-dimension query",
			domain.ErrDimensionMismatch, mismatched, len(query))
	}

	limit := opts.TopK
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	searchArgs := append([]any{vectorArg(query)}, args...)
	searchArgs = append(searchArgs, limit)

	rows, err := tx.QueryContext(ctx, `
		SELECT `+chunkColumns+`, `+cosineFunc+`(c.embedding, ?) AS score
		FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.embedding IS NOT NULL AND `+scope+`
		ORDER BY score DESC, c.seq ASC
		LIMIT ?
	`, searchArgs...)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var blob []byte
		if err := rows.Scan(&r.Chunk.Seq, &r.Chunk.ID, &r.Chunk.DocumentID, &r.Chunk.Content, &blob,
			&r.Chunk.PageNumber, &r.Chunk.Index, &r.Chunk.WordCount, &r.Chunk.CreatedAt, &r.Score); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Chunk.Embedding = decodeVector(blob)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// searchScope returns the WHERE fragment limiting a search to one document
// or to ready documents.
func searchScope(opts domain.SearchOptions) (string, []any) {
	if opts.IsScoped() {
		return "c.document_id = ?", []any{opts.DocumentID}
	}
	return "d.status = ?", []any{string(domain.DocumentStatusReady)}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.MIMEType, &doc.Size, &status,
		&doc.PageCount, &doc.ChunkCount, &doc.ErrorDetail, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var blob []byte
	if err := row.Scan(&chunk.Seq, &chunk.ID, &chunk.DocumentID, &chunk.Content, &blob,
		&chunk.PageNumber, &chunk.Index, &chunk.WordCount, &chunk.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = decodeVector(blob)
	return &chunk, nil
}

// vectorArg binds an empty embedding as NULL rather than a zero-length BLOB.
func vectorArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return encodeVector(v)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
