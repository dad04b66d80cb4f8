package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tellerdesk-dev/tellerdesk/internal/auth"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

// RegisterUserRequest represents a new-user registration
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=64"`
	Password string `json:"password" binding:"required,min=4"`
	FullName string `json:"fullName" binding:"required"`
	Admin    bool   `json:"admin"`
}

// ChangePasswordRequest carries a password change for the current user
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=4"`
}

// registerUser creates a new user (admin only)
func (s *Server) registerUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject duplicate usernames with a conflict, not a raw DB error
	var existing models.User
	if err := s.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	roleNames := []string{models.RoleUser}
	if req.Admin {
		roleNames = append(roleNames, models.RoleAdmin)
	}

	var roles []models.Role
	if err := s.db.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load roles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Roles:        roles,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	c.JSON(http.StatusOK, toUserDTO(user))
}

// listUsers returns every registered user (admin only)
func (s *Server) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Preload("Roles").Order("id").Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// changePassword changes the session user's password after verifying the
// old one
func (s *Server) changePassword(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := s.db.First(&user, session.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if err := auth.VerifyPassword(req.OldPassword, user.PasswordHash); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	if err := s.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("Password changed")
	c.JSON(http.StatusOK, gin.H{"status": "changed"})
}

// updateLastLogin stamps a user's last login time. Users may only stamp
// themselves.
func (s *Server) updateLastLogin(c *gin.Context) {
	session, _ := GetSessionData(c)

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	if userID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot stamp another user's login"})
		return
	}

	now := time.Now()
	err = s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_login_at", &now).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to stamp last login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stamped"})
}
