package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tellerdesk-dev/tellerdesk/internal/auth"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token    string   `json:"token"`
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// IdentityResponse is the verified identity behind a token
type IdentityResponse struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// login authenticates a username/password pair and issues a token
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find user by username
	var user models.User
	if err := s.db.Preload("Roles").Where("username = ?", req.Username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Verify password
	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	// A user with no roles cannot hold a session
	if len(user.Roles) == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account has no roles assigned"})
		return
	}

	// Generate JWT token
	token, err := auth.GenerateToken(user.ID, user.Username, user.RoleNames())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.RoleNames(),
	})
}

// getCurrentUser reports the identity behind the presented token. Clients
// restoring a stored session call this before trusting anything cached.
func (s *Server) getCurrentUser(c *gin.Context) {
	session, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, IdentityResponse{
		UserID:   session.UserID,
		Username: session.Username,
		Roles:    session.Roles,
	})
}
