package domain

import "time"

// DocumentStatus tracks a document through ingestion.
type DocumentStatus string

// Document lifecycle states.
const (
	// DocumentStatusUploading is set when the document record is first created.
	DocumentStatusUploading DocumentStatus = "uploading"

	// DocumentStatusProcessing is set while pages are extracted, chunked and embedded.
	DocumentStatusProcessing DocumentStatus = "processing"

	// DocumentStatusReady means every chunk is stored and searchable.
	DocumentStatusReady DocumentStatus = "ready"

	// DocumentStatusFailed means ingestion stopped; ErrorDetail says why.
	DocumentStatusFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusUploading, DocumentStatusProcessing, DocumentStatusReady, DocumentStatusFailed:
		return true
	default:
		return false
	}
}

// IsReady returns true if the document can be queried.
func (s DocumentStatus) IsReady() bool {
	return s == DocumentStatusReady
}

// IsTerminal returns true for states ingestion never leaves.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusReady || s == DocumentStatusFailed
}

// CanTransitionTo reports whether moving to next follows
// uploading -> processing -> {ready | failed}.
// A document may also fail straight from uploading.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case DocumentStatusUploading:
		return next == DocumentStatusProcessing || next == DocumentStatusFailed
	case DocumentStatusProcessing:
		return next == DocumentStatusReady || next == DocumentStatusFailed
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document identifies an ingested source file.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original file name supplied at ingestion.
	Filename string

	// MIMEType is the detected content type.
	MIMEType string

	// Size is the file size in bytes.
	Size int64

	// Status is the ingestion lifecycle state.
	Status DocumentStatus

	// PageCount is the number of pages extracted.
	PageCount int

	// ChunkCount is the number of chunks stored.
	ChunkCount int

	// ErrorDetail explains a failed ingestion.
	ErrorDetail string

	// CreatedAt is when the document was first recorded.
	CreatedAt time.Time

	// UpdatedAt is when the document was last changed.
	UpdatedAt time.Time
}

// Page is the extracted text of one page. Numbers start at 1.
type Page struct {
	Number int
	Text   string
}

// Chunk is an atomic retrievable passage.
// Chunks are written in batches during ingestion and never mutated afterwards.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the passage text.
	Content string

	// Embedding is the vector representation. Nil when not embedded.
	Embedding []float32

	// PageNumber is the source page of the passage.
	PageNumber int

	// Index is the ordinal position within the document, starting at 0.
	Index int

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int

	// Seq is the store-assigned insertion sequence. Lower values were
	// inserted earlier; search uses it to break score ties.
	Seq int64

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// HasEmbedding reports whether the chunk can take part in vector search.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}
