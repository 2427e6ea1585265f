package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

var fakePDF = []byte("%PDF-1.4 fake pdf content")

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{}
	normaliser := NewWithRunner(runner)
	require.NotNil(t, normaliser)
	assert.Equal(t, runner, normaliser.runner)
}

func TestExtract_SplitsPages(t *testing.T) {
	runner := &mockRunner{output: []byte("Warranty terms\n\fLimits of liability\n\f\f  \fContact us\n\f")}
	normaliser := NewWithRunner(runner)

	pages, err := normaliser.Extract(context.Background(), "manual.pdf", fakePDF)

	require.NoError(t, err)
	assert.Equal(t, []domain.Page{
		{Number: 1, Text: "Warranty terms"},
		{Number: 2, Text: "Limits of liability"},
		{Number: 3, Text: ""},
		{Number: 4, Text: ""},
		{Number: 5, Text: "Contact us"},
	}, pages)
	assert.Equal(t, "pdftotext", runner.name)
	require.Len(t, runner.args, 4)
	assert.Equal(t, "-", runner.args[3])
}

func TestExtract_NoText(t *testing.T) {
	normaliser := NewWithRunner(&mockRunner{output: []byte("\f\f")})

	pages, err := normaliser.Extract(context.Background(), "scan.pdf", fakePDF)

	require.NoError(t, err)
	assert.Equal(t, []domain.Page{{Number: 1}, {Number: 2}}, pages)
}

func TestExtract_RunnerError(t *testing.T) {
	normaliser := NewWithRunner(&mockRunner{err: errors.New("pdftotext crashed")})

	pages, err := normaliser.Extract(context.Background(), "bad.pdf", fakePDF)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, pages)
}

func TestExtract_ToolMissing(t *testing.T) {
	normaliser := NewWithRunner(&mockRunner{err: ErrPDFToolNotFound})

	_, err := normaliser.Extract(context.Background(), "doc.pdf", fakePDF)

	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}

func TestExtract_RejectsInput(t *testing.T) {
	normaliser := NewWithRunner(&mockRunner{})

	_, err := normaliser.Extract(context.Background(), "empty.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = normaliser.Extract(context.Background(), "fake.pdf", []byte("hello"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSplitPages_NoFormFeed(t *testing.T) {
	assert.Equal(t, []domain.Page{{Number: 1, Text: "single page"}}, splitPages("single page\n"))
}

func TestSplitPages_BlankPageKeepsCount(t *testing.T) {
	pages := splitPages("first\f\fthird\f")

	require.Len(t, pages, 3)
	assert.Equal(t, domain.Page{Number: 2}, pages[1])
	assert.Equal(t, domain.Page{Number: 3, Text: "third"}, pages[2])
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestExtract_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}

	// Garbage after the header makes the real tool fail.
	_, err := New().Extract(context.Background(), "broken.pdf", fakePDF)
	assert.Error(t, err)
}
