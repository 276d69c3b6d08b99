package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/pagination"
	"github.com/agenthub/agenthub/internal/services"
)

// ConversationHandler exposes the conversation ledger over HTTP.
type ConversationHandler struct {
	conversations *services.Conversations
}

// NewConversationHandler creates the handler.
func NewConversationHandler(conversations *services.Conversations) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// List handles GET /conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("limit"), pagination.DefaultLimit)
	filter := services.ConversationFilter{
		AgentID: c.Query("agentId"),
		Status:  c.Query("status"),
	}

	conversations, meta, err := h.conversations.List(c.Request.Context(), userID(c), filter, page)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope{Data: conversations, Pagination: meta})
}

// Get handles GET /conversations/:id.
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.conversations.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

type createConversationRequest struct {
	AgentID string `json:"agentId"`
	Title   string `json:"title"`
}

// Create handles POST /conversations.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationRequest
	_ = c.ShouldBindJSON(&req) // missing agentId is reported by the service

	conv, err := h.conversations.Create(c.Request.Context(), userID(c), req.AgentID, req.Title)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// ListMessages handles GET /conversations/:id/messages.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("limit"), pagination.DefaultMessageLimit)

	messages, meta, err := h.conversations.ListMessages(c.Request.Context(), userID(c), c.Param("id"), page)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope{Data: messages, Pagination: meta})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage handles POST /conversations/:id/messages.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	_ = c.ShouldBindJSON(&req) // missing content is reported by the service

	result, err := h.conversations.Send(c.Request.Context(), userID(c), c.Param("id"), req.Content)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Delete handles DELETE /conversations/:id.
func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.conversations.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		abortWith(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
