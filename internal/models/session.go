package models

import "time"

// Session is the per-visitor context: admin token and disclaimer acceptance.
// The token never leaves the service in JSON responses.
type Session struct {
	ID                 string     `json:"id" msgpack:"id"`
	Token              string     `json:"-" msgpack:"token"`
	TokenExpiresAt     *time.Time `json:"tokenExpiresAt,omitempty" msgpack:"token_expires_at,omitempty"`
	DisclaimerAccepted bool       `json:"disclaimerAccepted" msgpack:"disclaimer_accepted"`
	CreatedAt          time.Time  `json:"createdAt" msgpack:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" msgpack:"updated_at"`
}

// IsAuthenticated reports whether the session holds a token that has not expired at now.
func (s *Session) IsAuthenticated(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.TokenExpiresAt == nil || now.Before(*s.TokenExpiresAt)
}
