package client

import (
	"fmt"
	"net/http"
)

// UserRecord represents a user as seen by the administration endpoints
type UserRecord struct {
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	FullName    string   `json:"fullName"`
	Roles       []string `json:"roles"`
	LastLoginAt string   `json:"lastLoginAt,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// RegisterUserRequest represents a new-user registration
type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Admin    bool   `json:"admin"`
}

// ChangePasswordRequest carries a password change for the current user
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// RegisterUser creates a new user (admin only)
func (c *Client) RegisterUser(req RegisterUserRequest) (*UserRecord, error) {
	var user UserRecord
	if err := c.do(http.MethodPost, "/api/users/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Users lists every user (admin only)
func (c *Client) Users() ([]UserRecord, error) {
	var users []UserRecord
	if err := c.do(http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ChangePassword changes the current user's password
func (c *Client) ChangePassword(oldPassword, newPassword string) error {
	return c.do(http.MethodPut, "/api/users/change-password", nil, ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}

// UpdateLastLogin stamps the user's last login time
func (c *Client) UpdateLastLogin(userID int64) error {
	return c.do(http.MethodPut, fmt.Sprintf("/api/users/%d/last-login", userID), nil, nil, nil)
}
