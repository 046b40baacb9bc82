package repository

import (
	"context"

	"github.com/worklane/boardsync/domain"
)

// TaskStore exposes the two mutating task operations. Both are remote writes
// whose failures surface as submission errors; neither touches local state.
type TaskStore interface {
	Create(ctx context.Context, sess *domain.Session, payload domain.TaskPayload) (*domain.Task, error)
	Update(ctx context.Context, sess *domain.Session, id int64, patch domain.TaskPatch) (*domain.Task, error)
}
