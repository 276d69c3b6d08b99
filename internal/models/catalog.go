package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Template is a public agent blueprint. Instantiating a template copies
// its configuration into a new agent owned by the caller.
type Template struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	Category       string    `gorm:"index;size:64" json:"category,omitempty"`
	SystemPrompt   string    `gorm:"type:text;not null" json:"systemPrompt"`
	LLMProvider    string    `gorm:"size:64;not null" json:"llmProvider"`
	LLMModel       string    `gorm:"size:128;not null" json:"llmModel"`
	LLMTemperature float64   `gorm:"default:0.7" json:"llmTemperature"`
	LLMMaxTokens   int       `gorm:"default:4096" json:"llmMaxTokens"`
	UseCount       int       `gorm:"not null;default:0" json:"useCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName sets the table name.
func (Template) TableName() string {
	return "templates"
}

// BeforeCreate assigns an ID when one was not provided.
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// Plugin is a marketplace catalog entry. Execution is out of scope; the
// catalog only stores configuration schemas for clients.
type Plugin struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	Category     string         `gorm:"index;size:64" json:"category,omitempty"`
	Version      string         `gorm:"size:32" json:"version,omitempty"`
	Author       string         `gorm:"size:255" json:"author,omitempty"`
	ConfigSchema datatypes.JSON `json:"configSchema,omitempty"`
	IsEnabled    bool           `gorm:"default:true" json:"isEnabled"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// TableName sets the table name.
func (Plugin) TableName() string {
	return "plugins"
}

// BeforeCreate assigns an ID when one was not provided.
func (p *Plugin) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
