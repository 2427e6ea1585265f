// Package chunker splits page texts into overlapping, page-tagged passages.
package chunker

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk,
// roughly 600 tokens.
const DefaultChunkSize = 2400

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 400

// Processor splits pages into chunks that never cross a page boundary.
// Lengths are measured in runes.
type Processor struct {
	chunkSize int
	overlap   int
	now       func() time.Time
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// FromSettings creates a processor from chunking settings.
func FromSettings(s domain.ChunkingSettings) *Processor {
	return New(WithChunkSize(s.Size), WithOverlap(s.Overlap))
}

// Chunk splits pages in page-number order. Index runs across the whole
// document; each chunk gets a fresh UUID.
func (p *Processor) Chunk(documentID string, pages []domain.Page) []domain.Chunk {
	ordered := make([]domain.Page, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	created := p.now()
	var chunks []domain.Chunk
	for _, page := range ordered {
		for _, piece := range p.split(clean(page.Text)) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: documentID,
				Content:    piece,
				PageNumber: page.Number,
				Index:      len(chunks),
				WordCount:  len(strings.Fields(piece)),
				CreatedAt:  created,
			})
		}
	}
	return chunks
}

// clean normalises unicode to NFC and collapses whitespace runs.
func clean(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// split cuts text into pieces of at most chunkSize runes, preferring to end
// after a sentence, then at a space. Consecutive pieces share about
// overlap runes, starting on a word boundary.
func (p *Processor) split(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	n := len(runes)
	if n <= p.chunkSize {
		return []string{text}
	}

	var out []string
	start := 0
	for start < n {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else {
			end = breakPoint(runes, start, end)
		}

		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
		if end == n {
			break
		}

		next := end - p.overlap
		if p.overlap > 0 {
			next = alignToWord(runes, next, end)
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

// breakPoint returns the exclusive end for a piece starting at start whose
// hard limit is end. Breaks are searched in the back half only.
func breakPoint(runes []rune, start, end int) int {
	floor := start + (end-start)/2
	for i := end; i > floor; i-- {
		if i < len(runes) && runes[i] == ' ' && runes[i-1] == '.' {
			return i
		}
	}
	for i := end; i > floor; i-- {
		if i < len(runes) && runes[i] == ' ' {
			return i
		}
	}
	return end
}

// alignToWord moves pos forward to the next word start, staying below limit.
func alignToWord(runes []rune, pos, limit int) int {
	if pos <= 0 || runes[pos-1] == ' ' {
		return pos
	}
	for i := pos; i < limit; i++ {
		if runes[i] == ' ' {
			return i + 1
		}
	}
	return pos
}
