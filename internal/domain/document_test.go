package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	now := time.Now()
	doc := NewDocument("d1", "a1", "msa.pdf", DocumentTypePDF, "contract text", nil, 0, now)

	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "a1", doc.AgentID)
	assert.Equal(t, "msa.pdf", doc.Name)
	assert.Equal(t, DocumentTypePDF, doc.Type)
	assert.Equal(t, "contract text", doc.Content)
	assert.NotNil(t, doc.Metadata)
	require.NotNil(t, doc.ProcessedAt)
	assert.Equal(t, now, *doc.ProcessedAt)
}

func TestNewDocumentTruncatesContent(t *testing.T) {
	now := time.Now()

	t.Run("oversized content is truncated not rejected", func(t *testing.T) {
		content := strings.Repeat("x", 120)
		doc := NewDocument("d1", "a1", "big.txt", DocumentTypeText, content, nil, 100, now)
		assert.Len(t, doc.Content, 100)
	})

	t.Run("cut backs up to a rune boundary", func(t *testing.T) {
		// A cap landing inside the two-byte é must not split it.
		doc := NewDocument("d1", "a1", "utf8.txt", DocumentTypeText, "abcdé", nil, 5, now)
		assert.Equal(t, "abcd", doc.Content)
		assert.True(t, utf8.ValidString(doc.Content))
	})

	t.Run("multibyte content stays valid at every cap", func(t *testing.T) {
		content := strings.Repeat("§10 Kündigungsfrist — 30 Tage. ", 8)
		for limit := 1; limit < len(content); limit += 7 {
			doc := NewDocument("d1", "a1", "de.txt", DocumentTypeText, content, nil, limit, now)
			assert.True(t, utf8.ValidString(doc.Content), "cap %d", limit)
			assert.LessOrEqual(t, len(doc.Content), limit)
		}
	})

	t.Run("content within cap is untouched", func(t *testing.T) {
		doc := NewDocument("d1", "a1", "small.txt", DocumentTypeText, "short", nil, 100, now)
		assert.Equal(t, "short", doc.Content)
	})

	t.Run("zero cap applies default", func(t *testing.T) {
		content := strings.Repeat("y", DefaultMaxDocumentChars+500)
		doc := NewDocument("d1", "a1", "huge.txt", DocumentTypeText, content, nil, 0, now)
		assert.Len(t, doc.Content, DefaultMaxDocumentChars)
	})
}

func TestValidateDocument(t *testing.T) {
	now := time.Now()
	valid := func() *Document {
		return NewDocument("d1", "a1", "msa.pdf", DocumentTypePDF, "text", nil, 0, now)
	}

	t.Run("valid document", func(t *testing.T) {
		require.NoError(t, ValidateDocument(valid()))
	})

	t.Run("nil document", func(t *testing.T) {
		assert.Error(t, ValidateDocument(nil))
	})

	t.Run("missing name", func(t *testing.T) {
		doc := valid()
		doc.Name = ""
		assert.Error(t, ValidateDocument(doc))
	})

	t.Run("invalid type", func(t *testing.T) {
		doc := valid()
		doc.Type = DocumentType("spreadsheet")
		assert.Error(t, ValidateDocument(doc))
	})
}
