package domain

// User is the read-only membership projection of an identity owned by the
// external directory. The board subsystem never mutates users; it only adds
// them to workspaces through the invite flow.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}
