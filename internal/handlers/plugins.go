package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/pagination"
	"github.com/agenthub/agenthub/internal/services"
)

// PluginHandler exposes the plugin marketplace catalog.
type PluginHandler struct {
	plugins *services.Plugins
}

// NewPluginHandler creates the handler.
func NewPluginHandler(plugins *services.Plugins) *PluginHandler {
	return &PluginHandler{plugins: plugins}
}

// List handles GET /plugins.
func (h *PluginHandler) List(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("limit"), pagination.DefaultLimit)

	plugins, meta, err := h.plugins.List(c.Request.Context(), c.Query("category"), page)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope{Data: plugins, Pagination: meta})
}

// Get handles GET /plugins/:id.
func (h *PluginHandler) Get(c *gin.Context) {
	plugin, err := h.plugins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, plugin)
}
