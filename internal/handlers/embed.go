package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/pagination"
	"github.com/agenthub/agenthub/internal/services"
)

// EmbedHandler exposes the token-gated anonymous surface for the chat
// widget.
type EmbedHandler struct {
	embed *services.Embed
}

// NewEmbedHandler creates the handler.
func NewEmbedHandler(embed *services.Embed) *EmbedHandler {
	return &EmbedHandler{embed: embed}
}

// GetAgent handles GET /embed/agent/:shareToken.
func (h *EmbedHandler) GetAgent(c *gin.Context) {
	agent, err := h.embed.AgentByToken(c.Request.Context(), c.Param("shareToken"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

type createEmbedConversationRequest struct {
	ShareToken string `json:"shareToken"`
	SessionID  string `json:"sessionId"`
}

// CreateConversation handles POST /embed/conversations.
func (h *EmbedHandler) CreateConversation(c *gin.Context) {
	var req createEmbedConversationRequest
	_ = c.ShouldBindJSON(&req) // missing token is reported by the service

	conv, err := h.embed.CreateConversation(c.Request.Context(), req.ShareToken, req.SessionID)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// SendMessage handles POST /embed/conversations/:conversationId/messages.
func (h *EmbedHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.embed.Send(c.Request.Context(), c.Param("conversationId"), req.Content)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListMessages handles GET /embed/conversations/:conversationId/messages.
func (h *EmbedHandler) ListMessages(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("limit"), pagination.DefaultMessageLimit)

	messages, meta, err := h.embed.Messages(c.Request.Context(), c.Param("conversationId"), page)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope{Data: messages, Pagination: meta})
}
