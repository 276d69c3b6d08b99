package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/services"
)

// AuthHandler exposes registration and session management.
type AuthHandler struct {
	accounts *services.Accounts
}

// NewAuthHandler creates the handler.
func NewAuthHandler(accounts *services.Accounts) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	_ = c.ShouldBindJSON(&req) // missing fields are reported by the service

	session, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	pair, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.accounts.Get(c.Request.Context(), userID(c))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
