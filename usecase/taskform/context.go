package taskform

// ContextKind selects which creation variant a form runs as. The three
// variants share one controller and differ only in required fields and
// payload shape.
type ContextKind string

const (
	// WorkspaceScoped is the create-from-scratch variant: the user picks
	// the workspace inside the form.
	WorkspaceScoped ContextKind = "WORKSPACE"
	// ColumnScoped creates directly into a board column.
	ColumnScoped ContextKind = "COLUMN"
	// TeamScoped creates within a fixed team.
	TeamScoped ContextKind = "TEAM"
)

// CreationContext carries the variant and its anchors.
type CreationContext struct {
	Kind        ContextKind `json:"kind"`
	WorkspaceID int64       `json:"workspace_id,omitempty"`
	ListID      int64       `json:"list_id,omitempty"`
	TeamID      int64       `json:"team_id,omitempty"`
}

// State is the form lifecycle position.
type State string

const (
	StateClosed     State = "CLOSED"
	StateOpenCreate State = "OPEN_CREATE"
	StateOpenEdit   State = "OPEN_EDIT"
	StateSubmitting State = "SUBMITTING"
)

// Validation messages surfaced when a variant's required fields are missing.
const (
	msgSummaryRequired          = "Summary is required"
	msgWorkspaceSummaryRequired = "Workspace and Summary are required"
	msgSummaryStatusRequired    = "Summary and Status are required"
)
