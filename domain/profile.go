package domain

import "time"

// Profile is the application identity keyed by a unique username.
type Profile struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	ExpoPushToken *string   `json:"expo_push_token"`
	CreatedAt     time.Time `json:"created_at"`
	Name          *string   `json:"name,omitempty"`
	Email         *string   `json:"email,omitempty"`
}

// ProfileRef is the display projection joined onto tasks.
type ProfileRef struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
}

func (p *Profile) Ref() ProfileRef {
	return ProfileRef{ID: p.ID, Username: p.Username, Name: p.Name, Email: p.Email}
}
