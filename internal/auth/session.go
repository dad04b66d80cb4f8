package auth

import "slices"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the session carries the given role
func (s *SessionData) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}
