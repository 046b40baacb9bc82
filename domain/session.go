package domain

import "time"

// Session is the explicit identity context handed to every component at
// construction. It is the single source of truth for who the user is and
// which bearer token outgoing store calls carry; logout deletes it and
// nothing else holds identity state.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
