package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Table names. Prefixed so the store can share a database.
const (
	documentsTable = "rag_documents"
	chunksTable    = "rag_chunks"
	queryLogsTable = "rag_query_logs"
)

type documentRow struct {
	ID          string `gorm:"primaryKey"`
	Filename    string `gorm:"not null"`
	MIMEType    string `gorm:"column:mime_type"`
	Size        int64
	Status      string `gorm:"not null;index"`
	PageCount   int
	ChunkCount  int
	ErrorDetail string
	CreatedAt   time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (documentRow) TableName() string { return documentsTable }

// chunkRow keeps Seq as the primary key so insertion order is the tie-breaker.
type chunkRow struct {
	Seq        int64            `gorm:"primaryKey;autoIncrement"`
	ID         string           `gorm:"not null;uniqueIndex"`
	DocumentID string           `gorm:"not null;index"`
	Content    string           `gorm:"type:text;not null"`
	Embedding  *pgvector.Vector `gorm:"type:vector"`
	Dims       int
	PageNumber int
	ChunkIndex int
	WordCount  int
	CreatedAt  time.Time
}

func (chunkRow) TableName() string { return chunksTable }

type queryLogRow struct {
	Seq          int64  `gorm:"primaryKey;autoIncrement"`
	ID           string `gorm:"not null;uniqueIndex"`
	DocumentID   string `gorm:"index"`
	QueryText    string `gorm:"type:text;not null"`
	AnswerText   *string
	Retrieved    string `gorm:"type:jsonb;not null"`
	IsAnswerable bool
	Outcome      string `gorm:"not null"`
	ErrorDetail  string
	TokensUsed   int
	ElapsedMS    int64 `gorm:"column:elapsed_ms"`
	CreatedAt    time.Time
}

func (queryLogRow) TableName() string { return queryLogsTable }

func toDocumentRow(doc *domain.Document) documentRow {
	return documentRow{
		ID:          doc.ID,
		Filename:    doc.Filename,
		MIMEType:    doc.MIMEType,
		Size:        doc.Size,
		Status:      string(doc.Status),
		PageCount:   doc.PageCount,
		ChunkCount:  doc.ChunkCount,
		ErrorDetail: doc.ErrorDetail,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}

func (r *documentRow) toDomain() domain.Document {
	return domain.Document{
		ID:          r.ID,
		Filename:    r.Filename,
		MIMEType:    r.MIMEType,
		Size:        r.Size,
		Status:      domain.DocumentStatus(r.Status),
		PageCount:   r.PageCount,
		ChunkCount:  r.ChunkCount,
		ErrorDetail: r.ErrorDetail,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toChunkRow(c *domain.Chunk) chunkRow {
	row := chunkRow{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Content:    c.Content,
		PageNumber: c.PageNumber,
		ChunkIndex: c.Index,
		WordCount:  c.WordCount,
		CreatedAt:  c.CreatedAt,
	}
	if c.HasEmbedding() {
		v := pgvector.NewVector(c.Embedding)
		row.Embedding = &v
		row.Dims = len(c.Embedding)
	}
	return row
}

func (r *chunkRow) toDomain() domain.Chunk {
	c := domain.Chunk{
		ID:         r.ID,
		DocumentID: r.DocumentID,
		Content:    r.Content,
		PageNumber: r.PageNumber,
		Index:      r.ChunkIndex,
		WordCount:  r.WordCount,
		Seq:        r.Seq,
		CreatedAt:  r.CreatedAt,
	}
	if r.Embedding != nil {
		c.Embedding = r.Embedding.Slice()
	}
	return c
}

func toQueryLogRow(log *domain.QueryLog) (queryLogRow, error) {
	retrieved := log.Retrieved
	if retrieved == nil {
		retrieved = []domain.RetrievedChunk{}
	}
	data, err := json.Marshal(retrieved)
	if err != nil {
		return queryLogRow{}, fmt.Errorf("marshalling retrieved chunks: %w", err)
	}
	return queryLogRow{
		ID:           log.ID,
		DocumentID:   log.DocumentID,
		QueryText:    log.QueryText,
		AnswerText:   log.AnswerText,
		Retrieved:    string(data),
		IsAnswerable: log.IsAnswerable,
		Outcome:      string(log.Outcome),
		ErrorDetail:  log.ErrorDetail,
		TokensUsed:   log.TokensUsed,
		ElapsedMS:    log.ElapsedMS,
		CreatedAt:    log.CreatedAt.UTC(),
	}, nil
}

func (r *queryLogRow) toDomain() (domain.QueryLog, error) {
	log := domain.QueryLog{
		ID:           r.ID,
		DocumentID:   r.DocumentID,
		QueryText:    r.QueryText,
		AnswerText:   r.AnswerText,
		IsAnswerable: r.IsAnswerable,
		Outcome:      domain.QueryState(r.Outcome),
		ErrorDetail:  r.ErrorDetail,
		TokensUsed:   r.TokensUsed,
		ElapsedMS:    r.ElapsedMS,
		CreatedAt:    r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.Retrieved), &log.Retrieved); err != nil {
		return domain.QueryLog{}, fmt.Errorf("unmarshalling retrieved chunks: %w", err)
	}
	return log, nil
}
