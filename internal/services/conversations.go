package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/apperr"
	"github.com/agenthub/agenthub/internal/cache"
	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/pagination"
)

// Conversations owns conversation and message state: creation, listing,
// the message sequence, and the denormalized message counter.
type Conversations struct {
	db        *gorm.DB
	cache     *cache.Cache
	responder Responder
	log       zerolog.Logger
}

// NewConversations creates the conversation service.
func NewConversations(db *gorm.DB, c *cache.Cache, responder Responder, log zerolog.Logger) *Conversations {
	return &Conversations{db: db, cache: c, responder: responder, log: log}
}

// ConversationFilter narrows a conversation listing. Zero values mean no
// filtering.
type ConversationFilter struct {
	AgentID string
	Status  string
}

// ConversationView is a conversation with its denormalized agent summary.
type ConversationView struct {
	models.Conversation
	Agent models.AgentSummary `json:"agent"`
}

// SendResult carries the two messages persisted by one send call.
type SendResult struct {
	UserMessage      models.Message `json:"userMessage"`
	AssistantMessage models.Message `json:"assistantMessage"`
}

// scoped returns the base query for conversations owned by the user with
// the filter applied. Count and fetch both build on it so the two can
// never diverge.
func (s *Conversations) scoped(ctx context.Context, userID string, filter ConversationFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Conversation{}).Where("user_id = ?", userID)
	if filter.AgentID != "" {
		q = q.Where("agent_id = ?", filter.AgentID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// List returns the caller's conversations ordered by most recent
// activity.
func (s *Conversations) List(ctx context.Context, userID string, filter ConversationFilter, page pagination.Params) ([]ConversationView, pagination.Meta, error) {
	var total int64
	if err := s.scoped(ctx, userID, filter).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var conversations []models.Conversation
	err := s.scoped(ctx, userID, filter).
		Order("updated_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Preload("Agent").
		Find(&conversations).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	views := make([]ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		views = append(views, asView(conv))
	}
	return views, pagination.MetaFor(page, total), nil
}

// Get fetches one conversation by id and owner jointly. A conversation
// that exists but belongs to someone else is indistinguishable from one
// that does not exist.
func (s *Conversations) Get(ctx context.Context, userID, id string) (ConversationView, error) {
	conv, err := s.owned(ctx, userID, id, true)
	if err != nil {
		return ConversationView{}, err
	}
	return asView(*conv), nil
}

// Create starts a conversation under an agent the caller owns.
func (s *Conversations) Create(ctx context.Context, userID, agentID, title string) (models.Conversation, error) {
	if agentID == "" {
		return models.Conversation{}, apperr.Validation("MISSING_AGENT_ID", "Agent ID is required")
	}

	var agent models.Agent
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", agentID, userID).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Conversation{}, apperr.NotFound("AGENT_NOT_FOUND", "Agent not found")
		}
		return models.Conversation{}, err
	}

	conv := models.Conversation{
		AgentID: agentID,
		UserID:  userID,
		Title:   title,
		Status:  models.ConversationActive,
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return models.Conversation{}, err
	}

	s.cache.Del(ctx, cache.ConversationsKey(userID))
	return conv, nil
}

// ListMessages returns a page of the conversation's messages in replay
// order, oldest first. Ownership of the parent conversation is verified
// before anything is read.
func (s *Conversations) ListMessages(ctx context.Context, userID, conversationID string, page pagination.Params) ([]models.Message, pagination.Meta, error) {
	if _, err := s.owned(ctx, userID, conversationID, false); err != nil {
		return nil, pagination.Meta{}, err
	}
	return s.messagesPage(ctx, conversationID, page)
}

// Send persists the caller's message, obtains the assistant reply through
// the responder, persists it, and bumps the message counter. The two
// inserts and the counter update commit in one transaction, and the
// counter moves by a relative increment so concurrent sends on the same
// conversation cannot lose updates.
func (s *Conversations) Send(ctx context.Context, userID, conversationID, content string) (SendResult, error) {
	conv, err := s.owned(ctx, userID, conversationID, true)
	if err != nil {
		return SendResult{}, err
	}
	return s.send(ctx, conv, content)
}

// Delete removes a conversation and all its messages.
func (s *Conversations) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id, false); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Conversation{}).Error
	})
	if err != nil {
		return err
	}

	s.cache.Del(ctx, cache.ConversationKey(id), cache.ConversationsKey(userID))
	return nil
}

// owned fetches a conversation scoped to its owner, optionally preloading
// the agent.
func (s *Conversations) owned(ctx context.Context, userID, id string, withAgent bool) (*models.Conversation, error) {
	q := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)
	if withAgent {
		q = q.Preload("Agent")
	}
	var conv models.Conversation
	if err := q.First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CONVERSATION_NOT_FOUND", "Conversation not found")
		}
		return nil, err
	}
	return &conv, nil
}

// send runs the shared message pipeline for both the authenticated and
// embed surfaces. conv.Agent must be preloaded.
func (s *Conversations) send(ctx context.Context, conv *models.Conversation, content string) (SendResult, error) {
	if content == "" {
		return SendResult{}, apperr.Validation("MISSING_CONTENT", "Message content is required")
	}

	var history []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conv.ID).
		Order("created_at ASC").
		Find(&history).Error
	if err != nil {
		return SendResult{}, err
	}

	reply, err := s.responder.Respond(ctx, conv.Agent, history, content)
	if err != nil {
		return SendResult{}, err
	}

	metadata, err := json.Marshal(reply.Metadata)
	if err != nil {
		return SendResult{}, err
	}

	userMsg := models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	assistantMsg := models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Content:        reply.Content,
		TokenCount:     reply.TokenCount,
		Metadata:       datatypes.JSON(metadata),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}
		assistantMsg.CreatedAt = time.Now()
		if err := tx.Create(&assistantMsg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conv.ID).
			UpdateColumns(map[string]any{
				"message_count": gorm.Expr("message_count + ?", 2),
				"updated_at":    time.Now(),
			}).Error
	})
	if err != nil {
		return SendResult{}, err
	}

	s.cache.Del(ctx, cache.ConversationKey(conv.ID), cache.ConversationsKey(conv.UserID))
	return SendResult{UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}

// messagesPage pages through a conversation's messages in creation order.
func (s *Conversations) messagesPage(ctx context.Context, conversationID string, page pagination.Params) ([]models.Message, pagination.Meta, error) {
	scoped := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Message{}).Where("conversation_id = ?", conversationID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	messages := []models.Message{}
	err := scoped().
		Order("created_at ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&messages).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return messages, pagination.MetaFor(page, total), nil
}

func asView(conv models.Conversation) ConversationView {
	view := ConversationView{Conversation: conv}
	if conv.Agent != nil {
		view.Agent = conv.Agent.Summary()
	}
	view.Conversation.Agent = nil
	return view
}
