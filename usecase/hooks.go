package usecase

import (
	"context"

	"github.com/worklane/boardsync/domain"
)

// ReloadFunc is the board refresh hook. Every successful task create, task
// update (including status change and publish) and member invite fires it
// exactly once; reloading from the store is the only way the visible board
// ever changes.
type ReloadFunc func(ctx context.Context, sess *domain.Session, workspaceID int64)

// NopReload keeps controllers usable in tests that do not care about reloads.
func NopReload(context.Context, *domain.Session, int64) {}
