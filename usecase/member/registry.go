package member

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
	"github.com/worklane/boardsync/usecase"
)

// Registry tracks open invite flows, one per modal, scoped to the session
// that opened them.
type Registry struct {
	directory repository.DirectoryStore
	onAdded   usecase.ReloadFunc
	debounce  time.Duration
	logger    *zap.Logger

	mu      sync.RWMutex
	invites map[string]*Inviter
}

func NewRegistry(directory repository.DirectoryStore, onAdded usecase.ReloadFunc, debounce time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		directory: directory,
		onAdded:   onAdded,
		debounce:  debounce,
		logger:    logger,
		invites:   make(map[string]*Inviter),
	}
}

// Open starts an invite flow for the workspace.
func (r *Registry) Open(sess *domain.Session, workspaceID int64) *Inviter {
	inv := newInviter(uuid.NewString(), sess, workspaceID, r.directory, r.onAdded, r.debounce, r.logger)
	r.mu.Lock()
	r.invites[inv.id] = inv
	r.mu.Unlock()
	return inv
}

// Get returns the invite flow if it exists and belongs to the session.
func (r *Registry) Get(sess *domain.Session, id string) (*Inviter, error) {
	r.mu.RLock()
	inv, ok := r.invites[id]
	r.mu.RUnlock()
	if !ok || sess == nil || inv.sess == nil || inv.sess.ID != sess.ID {
		return nil, domain.ErrInviteNotFound
	}
	return inv, nil
}

// Close tears the flow down, cancelling any pending search timer.
func (r *Registry) Close(sess *domain.Session, id string) error {
	inv, err := r.Get(sess, id)
	if err != nil {
		return err
	}
	inv.Close()
	r.mu.Lock()
	delete(r.invites, id)
	r.mu.Unlock()
	return nil
}

// CloseSession drops every invite flow the session still has open.
func (r *Registry) CloseSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, inv := range r.invites {
		if inv.sess != nil && inv.sess.ID == sessionID {
			inv.Close()
			delete(r.invites, id)
		}
	}
}

// Sweep drops every invite flow whose session has expired, cancelling any
// pending search timers. Returns the number of flows dropped.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, inv := range r.invites {
		if inv.sess.IsExpired(now) {
			inv.Close()
			delete(r.invites, id)
			dropped++
		}
	}
	return dropped
}
