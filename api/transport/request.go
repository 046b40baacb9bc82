package transport

// SessionRequest exchanges an identity-provider token for a gateway session.
type SessionRequest struct {
	Token string `json:"token"`
}

// OpenFormRequest opens a task form. A non-zero TaskID means edit mode; for
// creates, Kind selects the context variant and the ids anchor it.
type OpenFormRequest struct {
	TaskID      int64  `json:"task_id,omitempty"`
	Kind        string `json:"kind,omitempty"`
	WorkspaceID int64  `json:"workspace_id,omitempty"`
	ListID      int64  `json:"list_id,omitempty"`
	TeamID      int64  `json:"team_id,omitempty"`
}

// OpenInviteRequest starts an invite flow for a workspace.
type OpenInviteRequest struct {
	Workspace int64 `json:"workspace"`
}

// InviteQueryRequest carries one keystroke of the user search box.
type InviteQueryRequest struct {
	Query string `json:"query"`
}

// InviteSelectRequest pins one search result.
type InviteSelectRequest struct {
	UserID int64 `json:"user_id"`
}

// CreateWorkspaceRequest names a new workspace.
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

// CreateTeamRequest names a new team within a workspace.
type CreateTeamRequest struct {
	Name      string `json:"name"`
	Workspace int64  `json:"workspace"`
}
