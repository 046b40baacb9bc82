package repository

import (
	"context"

	"github.com/worklane/boardsync/domain"
)

// BoardStore exposes the two read operations a board load is built from.
// Both return store order untouched; the loader does no client-side sorting
// beyond list membership.
type BoardStore interface {
	ListTaskLists(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.TaskList, error)
	ListTasks(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.Task, error)
}
