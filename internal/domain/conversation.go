package domain

import (
	"fmt"
	"time"
)

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one question or answer in an agent's chat history.
// Turns are written in matched user/assistant pairs after a successful
// generation; a failed generation leaves no orphan user turn behind.
type ConversationTurn struct {
	ID        string
	AgentID   string
	ChatID    string
	UserID    string
	Role      TurnRole
	Content   string
	CreatedAt time.Time
}

// NewConversationTurn creates a ConversationTurn instance
func NewConversationTurn(
	id, agentID, chatID, userID string,
	role TurnRole,
	content string,
	createdAt time.Time,
) *ConversationTurn {
	return &ConversationTurn{
		ID:        id,
		AgentID:   agentID,
		ChatID:    chatID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: createdAt,
	}
}

// ValidateConversationTurn validates a ConversationTurn instance
func ValidateConversationTurn(t *ConversationTurn) error {
	if t == nil {
		return fmt.Errorf("conversation turn cannot be nil")
	}

	if t.ID == "" {
		return fmt.Errorf("conversation turn ID is required")
	}

	if t.AgentID == "" {
		return fmt.Errorf("conversation turn AgentID is required")
	}

	if t.ChatID == "" {
		return fmt.Errorf("conversation turn ChatID is required")
	}

	if t.Content == "" {
		return fmt.Errorf("conversation turn Content is required")
	}

	if !isValidTurnRole(t.Role) {
		return fmt.Errorf("conversation turn Role is invalid: %s", t.Role)
	}

	return nil
}

// isValidTurnRole checks if a TurnRole is valid
func isValidTurnRole(r TurnRole) bool {
	switch r {
	case TurnRoleUser, TurnRoleAssistant:
		return true
	}
	return false
}
