package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/apperr"
	"github.com/agenthub/agenthub/internal/cache"
	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/pagination"
)

// Embed is the anonymous mirror of the conversation surface. Access is
// gated on an agent's share token and public flag instead of a session;
// conversations created here still record the agent's owner as userId.
type Embed struct {
	db            *gorm.DB
	cache         *cache.Cache
	conversations *Conversations
	log           zerolog.Logger
}

// NewEmbed creates the embed service.
func NewEmbed(db *gorm.DB, c *cache.Cache, conversations *Conversations, log zerolog.Logger) *Embed {
	return &Embed{db: db, cache: c, conversations: conversations, log: log}
}

// EmbedConversation is the response for an anonymous conversation start.
type EmbedConversation struct {
	ID        string `json:"id"`
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
}

// AgentByToken resolves a public agent configuration by share token. The
// cache is advisory: a miss or stale entry always falls through to the
// store, and the public gate is enforced on the stored record.
func (s *Embed) AgentByToken(ctx context.Context, shareToken string) (models.PublicAgent, error) {
	var cached models.PublicAgent
	if s.cache.Get(ctx, cache.AgentTokenKey(shareToken), &cached) && cached.IsPublic {
		return cached, nil
	}

	agent, err := s.agentByToken(ctx, shareToken)
	if err != nil {
		return models.PublicAgent{}, err
	}

	public := agent.Public()
	s.cache.Set(ctx, cache.AgentTokenKey(shareToken), public, cache.TTLShort)
	return public, nil
}

// CreateConversation starts an anonymous conversation with a public
// agent.
func (s *Embed) CreateConversation(ctx context.Context, shareToken, sessionID string) (EmbedConversation, error) {
	if shareToken == "" {
		return EmbedConversation{}, apperr.Validation("MISSING_SHARE_TOKEN", "Share token is required")
	}

	agent, err := s.agentByToken(ctx, shareToken)
	if err != nil {
		return EmbedConversation{}, err
	}

	if sessionID == "" {
		sessionID = "Unknown"
	}
	conv := models.Conversation{
		AgentID: agent.ID,
		UserID:  agent.UserID, // the agent owner pays for and owns embedded sessions
		Title:   fmt.Sprintf("Embedded Chat - %s", sessionID),
		Status:  models.ConversationActive,
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return EmbedConversation{}, err
	}

	s.cache.Del(ctx, cache.ConversationsKey(agent.UserID))
	return EmbedConversation{ID: conv.ID, AgentID: agent.ID, AgentName: agent.Name}, nil
}

// Send runs the message pipeline for an anonymous conversation.
func (s *Embed) Send(ctx context.Context, conversationID, content string) (SendResult, error) {
	conv, err := s.publicConversation(ctx, conversationID)
	if err != nil {
		return SendResult{}, err
	}
	return s.conversations.send(ctx, conv, content)
}

// Messages pages through an anonymous conversation's messages in replay
// order.
func (s *Embed) Messages(ctx context.Context, conversationID string, page pagination.Params) ([]models.Message, pagination.Meta, error) {
	if _, err := s.publicConversation(ctx, conversationID); err != nil {
		return nil, pagination.Meta{}, err
	}
	return s.conversations.messagesPage(ctx, conversationID, page)
}

func (s *Embed) agentByToken(ctx context.Context, shareToken string) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).Where("share_token = ?", shareToken).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("AGENT_NOT_FOUND", "Agent not found")
		}
		return nil, err
	}
	if !agent.IsPublic {
		return nil, apperr.Forbidden("AGENT_NOT_PUBLIC", "Agent is not public")
	}
	return &agent, nil
}

func (s *Embed) publicConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Preload("Agent").
		Where("id = ?", conversationID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CONVERSATION_NOT_FOUND", "Conversation not found")
		}
		return nil, err
	}
	if conv.Agent == nil || !conv.Agent.IsPublic {
		return nil, apperr.Forbidden("AGENT_NOT_PUBLIC", "Agent is not public")
	}
	return &conv, nil
}
