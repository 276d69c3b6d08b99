package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation statuses.
const (
	ConversationActive   = "active"
	ConversationArchived = "archived"
	ConversationDeleted  = "deleted"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is an ordered thread of messages between a caller and one
// agent. MessageCount is denormalized and must always equal the number of
// persisted messages in the thread.
type Conversation struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	AgentID      string    `gorm:"index;size:36;not null" json:"agentId"`
	UserID       string    `gorm:"index;size:36;not null" json:"userId"`
	Title        string    `gorm:"size:255" json:"title,omitempty"`
	Status       string    `gorm:"size:16;not null;default:active" json:"status"`
	MessageCount int       `gorm:"not null;default:0" json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Agent    *Agent    `json:"-"`
	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name.
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate assigns an ID when one was not provided.
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Message is a single immutable entry in a conversation. Replay order is
// CreatedAt ascending.
type Message struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string         `gorm:"index;size:36;not null" json:"conversationId"`
	Role           string         `gorm:"size:16;not null" json:"role"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	TokenCount     *int           `json:"tokenCount,omitempty"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// TableName sets the table name.
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns an ID when one was not provided.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
