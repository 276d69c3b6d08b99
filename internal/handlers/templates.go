package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/pagination"
	"github.com/agenthub/agenthub/internal/services"
)

// TemplateHandler exposes the template catalog.
type TemplateHandler struct {
	templates *services.Templates
}

// NewTemplateHandler creates the handler.
func NewTemplateHandler(templates *services.Templates) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// List handles GET /templates.
func (h *TemplateHandler) List(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("limit"), pagination.DefaultLimit)

	templates, meta, err := h.templates.List(c.Request.Context(), c.Query("category"), c.Query("search"), page)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope{Data: templates, Pagination: meta})
}

// Get handles GET /templates/:id.
func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// Instantiate handles POST /templates/:id/agents.
func (h *TemplateHandler) Instantiate(c *gin.Context) {
	agent, err := h.templates.Instantiate(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}
