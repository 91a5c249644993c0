package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justyntemme/bookdash/internal/auth"
)

// AuthHandler contains authentication handlers
type AuthHandler struct {
	auth *auth.Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(a *auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

// Login handles admin authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	if !h.auth.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Login is disabled"})
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"username": req.Username,
	})
}

// GetCurrentUser returns the authenticated admin
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username":     auth.GetUsername(c),
		"auth_enabled": h.auth.Enabled(),
	})
}
