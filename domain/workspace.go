package domain

// Workspace is the top-level tenant grouping of teams and members.
// IsAdmin reflects the current user's rights in it; the board subsystem
// selects workspaces but never mutates them.
type Workspace struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Team (a.k.a. project) is a named grouping of tasks scoped to exactly one
// workspace. Teams are reloaded whenever the selected workspace changes.
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Workspace int64  `json:"workspace"`
}
