package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// DocumentType classifies the original upload format of a document.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "pdf"
	DocumentTypeText  DocumentType = "text"
	DocumentTypeOther DocumentType = "other"
)

// DefaultMaxDocumentChars caps stored document content. Oversized extractions
// are truncated, never rejected: a partial document is more useful than none.
const DefaultMaxDocumentChars = 50000

// Document is the already-extracted plaintext of one uploaded file.
// Text extraction (PDF parsing, OCR) happens upstream; this core only
// stores and retrieves the result. Immutable after creation.
type Document struct {
	ID          string
	AgentID     string
	Name        string
	Type        DocumentType
	Content     string
	Metadata    map[string]string
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

// NewDocument creates a Document, truncating content to maxChars.
// maxChars <= 0 applies DefaultMaxDocumentChars.
func NewDocument(
	id, agentID, name string,
	docType DocumentType,
	content string,
	metadata map[string]string,
	maxChars int,
	createdAt time.Time,
) *Document {
	if maxChars <= 0 {
		maxChars = DefaultMaxDocumentChars
	}
	if len(content) > maxChars {
		// Back the cut up to a rune boundary: slicing mid-sequence would
		// leave invalid UTF-8 that the store rejects on insert.
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	processedAt := createdAt
	return &Document{
		ID:          id,
		AgentID:     agentID,
		Name:        name,
		Type:        docType,
		Content:     content,
		Metadata:    metadata,
		ProcessedAt: &processedAt,
		CreatedAt:   createdAt,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.AgentID == "" {
		return fmt.Errorf("document AgentID is required")
	}

	if d.Name == "" {
		return fmt.Errorf("document Name is required")
	}

	if !isValidDocumentType(d.Type) {
		return fmt.Errorf("document Type is invalid: %s", d.Type)
	}

	return nil
}

// isValidDocumentType checks if a DocumentType is valid
func isValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypePDF, DocumentTypeText, DocumentTypeOther:
		return true
	}
	return false
}
