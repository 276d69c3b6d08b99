package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Agent is a named LLM configuration owned by a user. Deleting an agent
// cascades to its conversations (and their messages) and knowledge base.
type Agent struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"index;size:36;not null" json:"userId"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	SystemPrompt   string    `gorm:"type:text;not null" json:"systemPrompt"`
	LLMProvider    string    `gorm:"size:64;not null" json:"llmProvider"`
	LLMModel       string    `gorm:"size:128;not null" json:"llmModel"`
	LLMTemperature float64   `gorm:"default:0.7" json:"llmTemperature"`
	LLMMaxTokens   int       `gorm:"default:4096" json:"llmMaxTokens"`
	IsPublic       bool      `gorm:"default:false" json:"isPublic"`
	ShareToken     *string   `gorm:"uniqueIndex;size:64" json:"shareToken,omitempty"`
	TemplateID     *string   `gorm:"size:36" json:"templateId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	KnowledgeBase *KnowledgeBase `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name.
func (Agent) TableName() string {
	return "agents"
}

// BeforeCreate assigns an ID when one was not provided.
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// AgentSummary is the denormalized agent view embedded in conversation
// responses.
type AgentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LLMProvider string `json:"llmProvider"`
}

// Summary returns the denormalized view of the agent.
func (a *Agent) Summary() AgentSummary {
	return AgentSummary{ID: a.ID, Name: a.Name, LLMProvider: a.LLMProvider}
}

// PublicAgent is the subset of agent configuration exposed on the embed
// surface.
type PublicAgent struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	SystemPrompt   string  `json:"systemPrompt"`
	LLMProvider    string  `json:"llmProvider"`
	LLMModel       string  `json:"llmModel"`
	LLMTemperature float64 `json:"llmTemperature"`
	LLMMaxTokens   int     `json:"llmMaxTokens"`
	IsPublic       bool    `json:"isPublic"`
}

// Public returns the embed-safe view of the agent.
func (a *Agent) Public() PublicAgent {
	return PublicAgent{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		SystemPrompt:   a.SystemPrompt,
		LLMProvider:    a.LLMProvider,
		LLMModel:       a.LLMModel,
		LLMTemperature: a.LLMTemperature,
		LLMMaxTokens:   a.LLMMaxTokens,
		IsPublic:       a.IsPublic,
	}
}

// KnowledgeBase holds per-agent retrieval state. Document processing is
// handled elsewhere; this record only anchors the 1-1 relation.
type KnowledgeBase struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AgentID   string    `gorm:"uniqueIndex;size:36;not null" json:"agentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName sets the table name.
func (KnowledgeBase) TableName() string {
	return "knowledge_bases"
}

// BeforeCreate assigns an ID when one was not provided.
func (kb *KnowledgeBase) BeforeCreate(tx *gorm.DB) error {
	if kb.ID == "" {
		kb.ID = uuid.New().String()
	}
	return nil
}
