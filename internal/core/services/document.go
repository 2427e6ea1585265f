package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService ingests files and manages stored documents.
// Ingestion moves a document through uploading -> processing -> ready,
// or to failed with the error recorded on the document.
type DocumentService struct {
	docStore   driven.DocumentStore
	embedder   driven.EmbeddingService
	chunker    driven.Chunker
	extractors []driven.PageExtractor
	ingest     domain.IngestSettings
	now        func() time.Time
}

// NewDocumentService creates a new document service.
// Extractors are tried in order; the first supporting the file's MIME type wins.
func NewDocumentService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	ingest domain.IngestSettings,
	extractors ...driven.PageExtractor,
) *DocumentService {
	return &DocumentService{
		docStore:   docStore,
		embedder:   embedder,
		chunker:    chunker,
		extractors: extractors,
		ingest:     ingest,
		now:        time.Now,
	}
}

// Ingest stores req as a new ready document.
func (s *DocumentService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.Document, error) {
	logger.Section("Ingest")

	filename := strings.TrimSpace(filepath.Base(req.Filename))
	if filename == "" || filename == "." {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, filename)
	}
	if limit := s.ingest.MaxFileSizeBytes(); limit > 0 && int64(len(req.Content)) > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d MB",
			domain.ErrFileTooLarge, filename, len(req.Content), s.ingest.MaxFileSizeMB)
	}

	mimeType := detectMIMEType(filename, req.Content)
	extractor := s.extractorFor(mimeType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, filename, mimeType)
	}
	logger.Debug("File %s detected as %s", filename, mimeType)

	now := s.now()
	doc := &domain.Document{
		ID:        uuid.New().String(),
		Filename:  filename,
		MIMEType:  mimeType,
		Size:      int64(len(req.Content)),
		Status:    domain.DocumentStatusUploading,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	if err := s.process(ctx, doc, extractor, req.Content); err != nil {
		return doc, s.fail(ctx, doc, err)
	}
	logger.Info("Ingested %s: %d pages, %d chunks", doc.Filename, doc.PageCount, doc.ChunkCount)
	return doc, nil
}

func (s *DocumentService) process(
	ctx context.Context, doc *domain.Document, extractor driven.PageExtractor, content []byte,
) error {
	if err := s.transition(doc, domain.DocumentStatusProcessing); err != nil {
		return err
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	pages, err := extractor.Extract(ctx, doc.Filename, content)
	if err != nil {
		return fmt.Errorf("extract pages: %w", err)
	}
	doc.PageCount = len(pages)

	chunks := s.chunker.Chunk(doc.ID, pages)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no extractable text", domain.ErrInvalidInput)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d embeddings for %d chunks", domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}
	now := s.now()
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		chunks[i].CreatedAt = now
	}

	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	doc.ChunkCount = len(chunks)
	if err := s.transition(doc, domain.DocumentStatusReady); err != nil {
		return err
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// fail records cause on the document. Chunks of a failed document are
// never searched: unscoped searches only see ready documents and scoped
// queries reject documents that are not ready.
func (s *DocumentService) fail(ctx context.Context, doc *domain.Document, cause error) error {
	logger.Warn("Ingestion of %s failed: %v", doc.Filename, cause)

	doc.ChunkCount = 0
	doc.ErrorDetail = cause.Error()
	if err := s.transition(doc, domain.DocumentStatusFailed); err != nil {
		return errors.Join(cause, err)
	}
	// The failure is recorded even when ctx was cancelled.
	if err := s.docStore.SaveDocument(context.WithoutCancel(ctx), doc); err != nil {
		return errors.Join(cause, fmt.Errorf("record failure: %w", err))
	}
	return fmt.Errorf("ingest %s: %w", doc.Filename, cause)
}

func (s *DocumentService) transition(doc *domain.Document, next domain.DocumentStatus) error {
	if !doc.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, doc.Status, next)
	}
	doc.Status = next
	doc.UpdatedAt = s.now()
	return nil
}

func (s *DocumentService) extractorFor(mimeType string) driven.PageExtractor {
	for _, e := range s.extractors {
		for _, supported := range e.SupportedMIMETypes() {
			if supported == mimeType {
				return e
			}
		}
	}
	return nil
}

// detectMIMEType prefers the file extension and falls back to content sniffing.
func detectMIMEType(filename string, content []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		if media, _, err := mime.ParseMediaType(t); err == nil {
			return media
		}
	}
	media, _, err := mime.ParseMediaType(http.DetectContentType(content))
	if err != nil {
		return "application/octet-stream"
	}
	return media
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, id)
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Chunks returns a document's chunks in order.
func (s *DocumentService) Chunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	return s.docStore.GetChunks(ctx, id)
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if _, err := s.docStore.GetDocument(ctx, id); err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Deleted document %s", id)
	return nil
}
