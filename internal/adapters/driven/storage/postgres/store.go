package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.VectorIndex   = (*Store)(nil)
	_ driven.QueryLogStore = (*Store)(nil)
)

// Store is a PostgreSQL + pgvector backed store.
type Store struct {
	db *gorm.DB
}

// NewStore connects to dsn, enables the vector extension and migrates the schema.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: storage.dsn is required for the postgres backend", domain.ErrInvalidInput)
	}

	logLevel := gormlogger.Silent
	if logger.IsVerbose() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enabling pgvector: %w", err)
	}
	if err := db.AutoMigrate(&documentRow{}, &chunkRow{}, &queryLogRow{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SaveDocument creates or replaces a document record.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	row := toDocumentRow(doc)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"filename", "mime_type", "size", "status", "page_count",
			"chunk_count", "error_detail", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var row documentRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	doc := row.toDomain()
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var rows []documentRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	docs := make([]domain.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].toDomain()
	}
	return docs, nil
}

// DeleteDocument removes a document and its chunks in one transaction.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&chunkRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&documentRow{}).Error
	})
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// SaveChunks inserts chunks in one statement. Seq values come back from the
// serial key in slice order and are written into the caller's slice.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]chunkRow, len(chunks))
	for i := range chunks {
		rows[i] = toChunkRow(&chunks[i])
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: duplicate chunk id", domain.ErrInvalidInput)
		}
		return fmt.Errorf("saving chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Seq = rows[i].Seq
	}
	return nil
}

// GetChunks returns a document's chunks ordered by Index.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	var rows []chunkRow
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("getting chunks: %w", err)
	}
	chunks := make([]domain.Chunk, len(rows))
	for i := range rows {
		chunks[i] = rows[i].toDomain()
	}
	return chunks, nil
}

// GetChunk retrieves a single chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	var row chunkRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting chunk: %w", err)
	}
	c := row.toDomain()
	return &c, nil
}

// scoredChunkRow is a chunk row with the computed similarity.
type scoredChunkRow struct {
	chunkRow `gorm:"embedded"`
	Score    float64
}

// Search ranks chunks by pgvector cosine similarity. The dimension check and
// the scan run in one repeatable-read transaction so they share a snapshot.
func (s *Store) Search(ctx context.Context, query []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	vec := pgvector.NewVector(query)

	var rows []scoredChunkRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mismatched int64
		if err := scoped(tx.Model(&chunkRow{}), opts).
			Where("c.dims <> ?", len(query)).
			Count(&mismatched).Error; err != nil {
			return fmt.Errorf("checking dimensions: %w", err)
		}
		if mismatched > 0 {
			return fmt.Errorf("%w: %d stored chunks differ from the %d-dimension query",
				domain.ErrDimensionMismatch, mismatched, len(query))
		}

		// Zero vectors have no direction; score them 0 as the in-process stores do.
		q := scoped(tx.Model(&chunkRow{}), opts).
			Select("c.*, CASE WHEN vector_norm(c.embedding) = 0 OR vector_norm(?::vector) = 0 "+
				"THEN 0 ELSE 1 - (c.embedding <=> ?) END AS score", vec, vec).
			Order("score DESC").Order("c.seq ASC")
		if opts.TopK > 0 {
			q = q.Limit(opts.TopK)
		}
		return q.Scan(&rows).Error
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	results := make([]domain.SearchResult, len(rows))
	for i := range rows {
		results[i] = domain.SearchResult{Chunk: rows[i].toDomain(), Score: rows[i].Score}
	}
	return results, nil
}

// scoped applies the search scope: one document, or every ready document.
func scoped(db *gorm.DB, opts domain.SearchOptions) *gorm.DB {
	db = db.Table(chunksTable+" AS c").
		Joins("JOIN "+documentsTable+" d ON d.id = c.document_id").
		Where("c.embedding IS NOT NULL")
	if opts.IsScoped() {
		return db.Where("c.document_id = ?", opts.DocumentID)
	}
	return db.Where("d.status = ?", string(domain.DocumentStatusReady))
}

// SaveQueryLog inserts one audit record.
func (s *Store) SaveQueryLog(ctx context.Context, log *domain.QueryLog) error {
	row, err := toQueryLogRow(log)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: duplicate query log %s", domain.ErrInvalidInput, log.ID)
		}
		return fmt.Errorf("saving query log: %w", err)
	}
	return nil
}

// ListQueryLogs returns records newest first.
func (s *Store) ListQueryLogs(ctx context.Context, filter domain.QueryLogFilter) ([]domain.QueryLog, error) {
	q := s.db.WithContext(ctx).Order("seq DESC")
	if filter.DocumentID != "" {
		q = q.Where("document_id = ?", filter.DocumentID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []queryLogRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing query logs: %w", err)
	}
	logs := make([]domain.QueryLog, 0, len(rows))
	for i := range rows {
		log, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}
