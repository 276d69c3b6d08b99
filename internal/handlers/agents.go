package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/pagination"
	"github.com/agenthub/agenthub/internal/services"
)

// AgentHandler exposes the agent registry over HTTP.
type AgentHandler struct {
	agents *services.Agents
}

// NewAgentHandler creates the handler.
func NewAgentHandler(agents *services.Agents) *AgentHandler {
	return &AgentHandler{agents: agents}
}

// List handles GET /agents.
func (h *AgentHandler) List(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("limit"), pagination.DefaultLimit)

	agents, meta, err := h.agents.List(c.Request.Context(), userID(c), c.Query("search"), page)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope{Data: agents, Pagination: meta})
}

// Get handles GET /agents/:id.
func (h *AgentHandler) Get(c *gin.Context) {
	agent, err := h.agents.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

// Create handles POST /agents.
func (h *AgentHandler) Create(c *gin.Context) {
	var input services.CreateAgentInput
	_ = c.ShouldBindJSON(&input) // missing fields are reported by the service

	agent, err := h.agents.Create(c.Request.Context(), userID(c), input)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

// Update handles PUT /agents/:id.
func (h *AgentHandler) Update(c *gin.Context) {
	var input services.UpdateAgentInput
	_ = c.ShouldBindJSON(&input)

	agent, err := h.agents.Update(c.Request.Context(), userID(c), c.Param("id"), input)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

// Delete handles DELETE /agents/:id.
func (h *AgentHandler) Delete(c *gin.Context) {
	if err := h.agents.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		abortWith(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ShareToken handles POST /agents/:id/share-token.
func (h *AgentHandler) ShareToken(c *gin.Context) {
	result, err := h.agents.ShareToken(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
