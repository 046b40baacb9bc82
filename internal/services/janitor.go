package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepableRegistry drops entries owned by expired sessions.
type SweepableRegistry interface {
	Sweep(now time.Time) int
}

// SessionJanitor periodically sweeps the gateway's per-session state
// registries. Sessions that expire by TTL never log out, so their forms and
// invite flows are only reclaimed here.
type SessionJanitor struct {
	registries []SweepableRegistry
	logger     *zap.Logger
	cron       *cron.Cron
	interval   time.Duration
}

func NewSessionJanitor(interval time.Duration, logger *zap.Logger, registries ...SweepableRegistry) *SessionJanitor {
	if interval < time.Minute {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &SessionJanitor{
		registries: registries,
		logger:     logger,
		interval:   interval,
		cron:       cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = j.cron.AddFunc(schedule, j.SweepNow)

	return j
}

// Start launches the cron scheduler.
func (j *SessionJanitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("session janitor started", zap.Duration("interval", j.interval))
}

// Stop gracefully stops the scheduler.
func (j *SessionJanitor) Stop() {
	if j == nil || j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.logger.Info("session janitor stopped")
}

// SweepNow runs one sweep over every registered registry.
func (j *SessionJanitor) SweepNow() {
	now := time.Now()
	total := 0
	for _, reg := range j.registries {
		total += reg.Sweep(now)
	}
	if total > 0 {
		j.logger.Info("expired session state reclaimed", zap.Int("entries", total))
	}
}
