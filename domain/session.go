package domain

import "time"

// Session is the token bundle issued by the identity provider. The core only
// reads it.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         SessionUser `json:"user"`
}

// SessionUser carries the identity claims consumed by username resolution.
type SessionUser struct {
	ID       string       `json:"id"`
	Email    string       `json:"email,omitempty"`
	Metadata UserMetadata `json:"user_metadata"`
}

// UserMetadata mirrors the provider's free-form user metadata.
type UserMetadata struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Name     string `json:"name,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

