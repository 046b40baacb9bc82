package domain

// TaskList is a board column: an ordered bucket of tasks. Column order is
// the order returned by the remote store and is stable across reloads.
type TaskList struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Workspace int64  `json:"workspace,omitempty"`
}

// Column pairs a task list with the tasks currently placed in it, in the
// order the store returned them.
type Column struct {
	List  TaskList `json:"list"`
	Tasks []Task   `json:"tasks"`
}

// IsEmpty distinguishes a loaded-but-empty column from one that has data.
func (c Column) IsEmpty() bool {
	return len(c.Tasks) == 0
}

// BoardSnapshot is the wholesale-replaced view of a workspace board.
// A snapshot is immutable once produced; a reload builds a fresh one and
// swaps it in, which is the only way view state ever changes.
type BoardSnapshot struct {
	Workspace int64    `json:"workspace"`
	Columns   []Column `json:"columns"`
}

// EmptySnapshot is the fail-soft degraded result of a failed load.
func EmptySnapshot(workspaceID int64) *BoardSnapshot {
	return &BoardSnapshot{Workspace: workspaceID, Columns: []Column{}}
}

// FindTask locates a task on the board by id.
func (s *BoardSnapshot) FindTask(id int64) (*Task, bool) {
	if s == nil {
		return nil, false
	}
	for ci := range s.Columns {
		for ti := range s.Columns[ci].Tasks {
			if s.Columns[ci].Tasks[ti].ID == id {
				task := s.Columns[ci].Tasks[ti]
				return &task, true
			}
		}
	}
	return nil, false
}

// TaskCount reports the total number of tasks placed on the board.
func (s *BoardSnapshot) TaskCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, col := range s.Columns {
		n += len(col.Tasks)
	}
	return n
}
