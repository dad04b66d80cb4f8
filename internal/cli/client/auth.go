package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string   `json:"token"`
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Identity is the server-confirmed identity returned by the identity check.
type Identity struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Login authenticates the user and returns a bearer token with the
// identity it belongs to. It deliberately bypasses the authenticated
// request path: a 401 here means bad credentials, not an expired session,
// and must not clear stored state.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	jsonData, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(
		c.baseURL+"/api/auth/login",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed (status %d): %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &loginResp, nil
}

// Me verifies the persisted token against the server and returns the
// identity it maps to. This is the bootstrap identity check.
func (c *Client) Me() (*Identity, error) {
	var id Identity
	if err := c.do(http.MethodGet, "/api/auth/me", nil, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}
