package model

import (
	"time"

	"github.com/google/uuid"
)

type ConversationID string

// NewConversationID generates a new unique ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message in a conversation, ordered by Timestamp
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation represents a chat session within a space
type Conversation struct {
	ID        ConversationID
	SpaceID   SpaceID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Turn bodies are kept in object storage, not Firestore, due to
	// document size limitation
	Turns []Turn `firestore:"-"`
}
