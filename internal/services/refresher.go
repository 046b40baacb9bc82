package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/usecase/board"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// RefresherConfig controls how frequently active boards are re-fetched.
type RefresherConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// BoardRefresher periodically re-fetches every workspace that currently has
// an installed snapshot. There is no push channel from the store; re-fetch
// is the only way the board converges, and this keeps it converging even
// while the user is idle.
type BoardRefresher struct {
	holder  *board.Holder
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     RefresherConfig
}

func NewBoardRefresher(holder *board.Holder, monitor ConnectionHealth, logger *zap.Logger, cfg RefresherConfig) *BoardRefresher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	// The cron schedule has whole-second resolution; anything finer would
	// format to "@every 0s" and never register.
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	br := &BoardRefresher{
		holder:  holder,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = br.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		br.Refresh(ctx)
	})

	return br
}

// Start launches the cron scheduler.
func (br *BoardRefresher) Start() {
	if br == nil || br.cron == nil {
		return
	}
	br.cron.Start()
	br.logger.Info("board refresher started", zap.Duration("interval", br.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (br *BoardRefresher) Stop(ctx context.Context) {
	if br == nil || br.cron == nil {
		return
	}
	stopCtx := br.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	br.logger.Info("board refresher stopped")
}

// Refresh reloads every active board once. Failures degrade to empty or
// stale snapshots exactly like a user-triggered reload; nothing here is
// fatal.
func (br *BoardRefresher) Refresh(ctx context.Context) {
	if br.monitor != nil && !br.monitor.IsOnline() {
		br.logger.Debug("skipping board refresh (collaborators offline)")
		return
	}

	for workspaceID, sess := range br.holder.Active() {
		if _, err := br.holder.Reload(ctx, sess, workspaceID); err != nil {
			br.logger.Warn("background reload failed",
				zap.Int64("workspace", workspaceID),
				zap.Error(err))
		}
	}
}
