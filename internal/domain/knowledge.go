package domain

import (
	"fmt"
	"time"
)

// KnowledgeSource identifies where a knowledge item was captured from.
type KnowledgeSource string

const (
	KnowledgeSourceChatMessage  KnowledgeSource = "chat-message"
	KnowledgeSourceDocument     KnowledgeSource = "document"
	KnowledgeSourceExternalFeed KnowledgeSource = "external-feed"
)

// KnowledgeItem is one ingested unit of chat-derived text. Items are
// append-only: written once at ingestion, never mutated afterwards.
// For a given agent at most one item exists per DedupKey; the platform
// message identifier makes at-least-once delivery from chat adapters safe.
type KnowledgeItem struct {
	ID        string
	AgentID   string
	Source    KnowledgeSource
	ChatID    string
	ChatTitle string
	UserID    string
	Username  string
	DedupKey  string
	ThreadID  string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// NewKnowledgeItem creates a KnowledgeItem from an incoming chat message.
func NewKnowledgeItem(
	id, agentID string,
	source KnowledgeSource,
	chatID, chatTitle, userID, username, dedupKey, threadID, content string,
	metadata map[string]string,
	createdAt time.Time,
) *KnowledgeItem {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &KnowledgeItem{
		ID:        id,
		AgentID:   agentID,
		Source:    source,
		ChatID:    chatID,
		ChatTitle: chatTitle,
		UserID:    userID,
		Username:  username,
		DedupKey:  dedupKey,
		ThreadID:  threadID,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: createdAt,
	}
}

// ContextLabel renders the attribution prefix used when the item is quoted
// in prompt context: the chat title when known, otherwise the source, plus
// the author's username or user ID.
func (k *KnowledgeItem) ContextLabel() string {
	title := k.ChatTitle
	if title == "" {
		title = string(k.Source)
	}
	author := k.Username
	if author == "" {
		author = k.UserID
	}
	return fmt.Sprintf("[%s | @%s]", title, author)
}

// ValidateKnowledgeItem validates a KnowledgeItem prior to ingestion.
func ValidateKnowledgeItem(k *KnowledgeItem) error {
	if k == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}

	if k.ID == "" {
		return fmt.Errorf("knowledge item ID is required")
	}

	if k.AgentID == "" {
		return fmt.Errorf("knowledge item AgentID is required")
	}

	if k.DedupKey == "" {
		return ErrEmptyDedupKey
	}

	if k.Content == "" {
		return fmt.Errorf("knowledge item Content is required")
	}

	if !isValidKnowledgeSource(k.Source) {
		return fmt.Errorf("knowledge item Source is invalid: %s", k.Source)
	}

	return nil
}

// isValidKnowledgeSource checks if a KnowledgeSource is valid
func isValidKnowledgeSource(s KnowledgeSource) bool {
	switch s {
	case KnowledgeSourceChatMessage, KnowledgeSourceDocument, KnowledgeSourceExternalFeed:
		return true
	}
	return false
}
