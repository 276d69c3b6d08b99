package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/apperr"
	"github.com/agenthub/agenthub/internal/cache"
	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/pagination"
)

// Agents manages the agent registry: owner-scoped CRUD and share-token
// issuance for the embed surface.
type Agents struct {
	db    *gorm.DB
	cache *cache.Cache
	log   zerolog.Logger
}

// NewAgents creates the agent service.
func NewAgents(db *gorm.DB, c *cache.Cache, log zerolog.Logger) *Agents {
	return &Agents{db: db, cache: c, log: log}
}

// CreateAgentInput are the fields accepted when creating an agent.
type CreateAgentInput struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	SystemPrompt   string   `json:"systemPrompt"`
	LLMProvider    string   `json:"llmProvider"`
	LLMModel       string   `json:"llmModel"`
	LLMTemperature *float64 `json:"llmTemperature"`
	LLMMaxTokens   *int     `json:"llmMaxTokens"`
	TemplateID     *string  `json:"templateId"`
}

// UpdateAgentInput are the fields accepted when updating an agent. Nil
// means leave unchanged.
type UpdateAgentInput struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	SystemPrompt   *string  `json:"systemPrompt"`
	LLMProvider    *string  `json:"llmProvider"`
	LLMModel       *string  `json:"llmModel"`
	LLMTemperature *float64 `json:"llmTemperature"`
	LLMMaxTokens   *int     `json:"llmMaxTokens"`
	IsPublic       *bool    `json:"isPublic"`
}

// ShareTokenResult is the response for a share-token request.
type ShareTokenResult struct {
	ShareToken string `json:"shareToken"`
	EmbedCode  string `json:"embedCode"`
}

func (s *Agents) scoped(ctx context.Context, userID, search string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Agent{}).Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return q
}

// List returns the caller's agents, newest first, optionally filtered by
// a name/description search.
func (s *Agents) List(ctx context.Context, userID, search string, page pagination.Params) ([]models.Agent, pagination.Meta, error) {
	var total int64
	if err := s.scoped(ctx, userID, search).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	agents := []models.Agent{}
	err := s.scoped(ctx, userID, search).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&agents).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return agents, pagination.MetaFor(page, total), nil
}

// Get fetches one agent the caller owns.
func (s *Agents) Get(ctx context.Context, userID, id string) (models.Agent, error) {
	return s.owned(ctx, userID, id)
}

// Create registers a new agent and its knowledge base.
func (s *Agents) Create(ctx context.Context, userID string, input CreateAgentInput) (models.Agent, error) {
	if input.Name == "" || input.SystemPrompt == "" || input.LLMProvider == "" || input.LLMModel == "" {
		return models.Agent{}, apperr.Validation("MISSING_FIELDS", "Name, system prompt, LLM provider, and model are required")
	}

	agent := models.Agent{
		UserID:         userID,
		Name:           input.Name,
		Description:    input.Description,
		SystemPrompt:   input.SystemPrompt,
		LLMProvider:    input.LLMProvider,
		LLMModel:       input.LLMModel,
		LLMTemperature: 0.7,
		LLMMaxTokens:   4096,
		TemplateID:     input.TemplateID,
	}
	if input.LLMTemperature != nil {
		agent.LLMTemperature = *input.LLMTemperature
	}
	if input.LLMMaxTokens != nil {
		agent.LLMMaxTokens = *input.LLMMaxTokens
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&agent).Error; err != nil {
			return err
		}
		return tx.Create(&models.KnowledgeBase{AgentID: agent.ID}).Error
	})
	if err != nil {
		return models.Agent{}, err
	}

	s.cache.Del(ctx, cache.AgentsListKey(userID))
	return agent, nil
}

// Update applies a partial update to an agent the caller owns.
func (s *Agents) Update(ctx context.Context, userID, id string, input UpdateAgentInput) (models.Agent, error) {
	agent, err := s.owned(ctx, userID, id)
	if err != nil {
		return models.Agent{}, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.SystemPrompt != nil {
		updates["system_prompt"] = *input.SystemPrompt
	}
	if input.LLMProvider != nil {
		updates["llm_provider"] = *input.LLMProvider
	}
	if input.LLMModel != nil {
		updates["llm_model"] = *input.LLMModel
	}
	if input.LLMTemperature != nil {
		updates["llm_temperature"] = *input.LLMTemperature
	}
	if input.LLMMaxTokens != nil {
		updates["llm_max_tokens"] = *input.LLMMaxTokens
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&agent).Updates(updates).Error; err != nil {
			return models.Agent{}, err
		}
		agent, err = s.owned(ctx, userID, id)
		if err != nil {
			return models.Agent{}, err
		}
	}

	keys := []string{cache.AgentKey(id), cache.AgentsListKey(userID)}
	if agent.ShareToken != nil {
		keys = append(keys, cache.AgentTokenKey(*agent.ShareToken))
	}
	s.cache.Del(ctx, keys...)
	return agent, nil
}

// Delete removes an agent and everything under it: conversations, their
// messages, and the knowledge base.
func (s *Agents) Delete(ctx context.Context, userID, id string) error {
	agent, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conversationIDs := tx.Model(&models.Conversation{}).Select("id").Where("agent_id = ?", id)
		if err := tx.Where("conversation_id IN (?)", conversationIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", id).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", id).Delete(&models.KnowledgeBase{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Agent{}).Error
	})
	if err != nil {
		return err
	}

	keys := []string{cache.AgentKey(id), cache.AgentsListKey(userID), cache.ConversationsKey(userID)}
	if agent.ShareToken != nil {
		keys = append(keys, cache.AgentTokenKey(*agent.ShareToken))
	}
	s.cache.Del(ctx, keys...)
	return nil
}

// ShareToken returns the agent's share token, generating and persisting
// one on first request.
func (s *Agents) ShareToken(ctx context.Context, userID, id string) (ShareTokenResult, error) {
	agent, err := s.owned(ctx, userID, id)
	if err != nil {
		return ShareTokenResult{}, err
	}

	if agent.ShareToken == nil {
		token, err := newShareToken()
		if err != nil {
			return ShareTokenResult{}, err
		}
		if err := s.db.WithContext(ctx).Model(&agent).Update("share_token", token).Error; err != nil {
			return ShareTokenResult{}, err
		}
		agent.ShareToken = &token
	}

	return ShareTokenResult{
		ShareToken: *agent.ShareToken,
		EmbedCode:  embedCode(*agent.ShareToken),
	}, nil
}

func (s *Agents) owned(ctx context.Context, userID, id string) (models.Agent, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Agent{}, apperr.NotFound("AGENT_NOT_FOUND", "Agent not found")
		}
		return models.Agent{}, err
	}
	return agent, nil
}

// newShareToken generates an opaque 64-character token.
func newShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func embedCode(shareToken string) string {
	return fmt.Sprintf(`<!-- AgentHub Embed Code -->
<script src="https://your-domain.com/embed.js"></script>
<script>
  AgentHub.init({
    shareToken: '%s',
    position: 'bottom-right',
    theme: 'light',
    width: 400,
    height: 600,
    title: 'AI Assistant',
  });
</script>`, shareToken)
}
