package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/services"
)

// UserHandler exposes profile management for the authenticated user.
type UserHandler struct {
	accounts *services.Accounts
}

// NewUserHandler creates the handler.
func NewUserHandler(accounts *services.Accounts) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// GetProfile handles GET /users/me.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.accounts.Get(c.Request.Context(), userID(c))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input services.UpdateProfileInput
	_ = c.ShouldBindJSON(&input)

	user, err := h.accounts.UpdateProfile(c.Request.Context(), userID(c), input)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
