package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims we trust from the external identity provider.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SessionID keys per-session list controller state.
func (c *SessionClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
