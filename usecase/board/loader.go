package board

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
)

// Loader assembles board snapshots from the remote task store. It is
// idempotent and side-effect free; it is the universal refresh primitive
// every mutation ends with.
type Loader struct {
	store  repository.BoardStore
	logger *zap.Logger
}

func NewLoader(store repository.BoardStore, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		store:  store,
		logger: logger,
	}
}

// Load fetches the workspace's task lists and tasks concurrently, waits for
// both, and joins them into a snapshot. Without a selected workspace it
// returns an empty snapshot without touching the store. Any fetch failure
// degrades to an empty snapshot plus a load error for display; a load never
// crashes the board.
func (l *Loader) Load(ctx context.Context, sess *domain.Session, workspaceID int64) (*domain.BoardSnapshot, error) {
	if workspaceID == 0 {
		return domain.EmptySnapshot(0), nil
	}

	var (
		lists   []domain.TaskList
		tasks   []domain.Task
		listErr error
		taskErr error
		wg      sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		lists, listErr = l.store.ListTaskLists(ctx, sess, workspaceID)
	}()
	go func() {
		defer wg.Done()
		tasks, taskErr = l.store.ListTasks(ctx, sess, workspaceID)
	}()
	wg.Wait()

	if listErr != nil {
		l.logger.Warn("task list fetch failed", zap.Int64("workspace", workspaceID), zap.Error(listErr))
		return domain.EmptySnapshot(workspaceID), asLoadError(listErr)
	}
	if taskErr != nil {
		l.logger.Warn("task fetch failed", zap.Int64("workspace", workspaceID), zap.Error(taskErr))
		return domain.EmptySnapshot(workspaceID), asLoadError(taskErr)
	}

	return join(workspaceID, lists, tasks), nil
}

// join groups tasks under the column whose id matches their task_list,
// preserving store order on both axes. Tasks without a known column are
// left off the board; placement is driven by task_list alone, status is an
// independent workflow tag.
func join(workspaceID int64, lists []domain.TaskList, tasks []domain.Task) *domain.BoardSnapshot {
	columns := make([]domain.Column, len(lists))
	index := make(map[int64]int, len(lists))
	for i, list := range lists {
		columns[i] = domain.Column{List: list, Tasks: []domain.Task{}}
		index[list.ID] = i
	}

	for _, task := range tasks {
		if task.TaskList == 0 {
			continue
		}
		if i, ok := index[task.TaskList]; ok {
			columns[i].Tasks = append(columns[i].Tasks, task)
		}
	}

	return &domain.BoardSnapshot{Workspace: workspaceID, Columns: columns}
}

func asLoadError(err error) error {
	if domain.IsDomainError(err, domain.ErrCodeLoad) {
		return err
	}
	return domain.NewLoadError("failed to load board", err)
}
