package board

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
)

type boardState struct {
	snapshot *domain.BoardSnapshot
	sess     *domain.Session
}

// Holder keeps the current snapshot per workspace. Snapshots are immutable;
// a reload builds a fresh one and swaps it in wholesale, so concurrent
// reloads can never interleave into a merged board. The last completed
// reload wins.
type Holder struct {
	loader *Loader
	logger *zap.Logger

	mu     sync.RWMutex
	boards map[int64]*boardState
}

func NewHolder(loader *Loader, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{
		loader: loader,
		logger: logger,
		boards: make(map[int64]*boardState),
	}
}

// Reload fetches a fresh snapshot and installs it. On a load failure the
// empty snapshot is installed and the error returned for display; the board
// stays usable either way.
func (h *Holder) Reload(ctx context.Context, sess *domain.Session, workspaceID int64) (*domain.BoardSnapshot, error) {
	snapshot, err := h.loader.Load(ctx, sess, workspaceID)
	if workspaceID != 0 {
		h.install(workspaceID, sess, snapshot)
	}
	return snapshot, err
}

// Current returns the installed snapshot for the workspace, if any.
func (h *Holder) Current(workspaceID int64) (*domain.BoardSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	state, ok := h.boards[workspaceID]
	if !ok {
		return nil, false
	}
	return state.snapshot, true
}

// Forget drops the workspace's snapshot, e.g. on session teardown.
func (h *Holder) Forget(workspaceID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.boards, workspaceID)
}

// Active lists the workspaces that currently have an installed snapshot,
// paired with the session that last loaded each. The background refresher
// re-fetches exactly this set.
func (h *Holder) Active() map[int64]*domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[int64]*domain.Session, len(h.boards))
	for id, state := range h.boards {
		out[id] = state.sess
	}
	return out
}

func (h *Holder) install(workspaceID int64, sess *domain.Session, snapshot *domain.BoardSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.boards[workspaceID] = &boardState{snapshot: snapshot, sess: sess}
	h.logger.Debug("snapshot installed",
		zap.Int64("workspace", workspaceID),
		zap.Int("columns", len(snapshot.Columns)),
		zap.Int("tasks", snapshot.TaskCount()))
}
