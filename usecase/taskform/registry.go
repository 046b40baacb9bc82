package taskform

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
	"github.com/worklane/boardsync/usecase"
)

// Registry tracks the open forms of all sessions. Form state lives gateway-
// side, so a form is addressed by id and scoped to the session that opened
// it.
type Registry struct {
	tasks     repository.TaskStore
	directory repository.DirectoryStore
	onSaved   usecase.ReloadFunc
	logger    *zap.Logger

	mu    sync.RWMutex
	forms map[string]*Form
}

func NewRegistry(tasks repository.TaskStore, directory repository.DirectoryStore, onSaved usecase.ReloadFunc, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tasks:     tasks,
		directory: directory,
		onSaved:   onSaved,
		logger:    logger,
		forms:     make(map[string]*Form),
	}
}

// OpenCreate opens a form in create mode for the given context variant.
func (r *Registry) OpenCreate(ctx context.Context, sess *domain.Session, creation CreationContext) *Form {
	form := r.newForm(sess)
	form.openCreate(ctx, creation)
	return form
}

// OpenEdit opens a form seeded from an existing task. The workspace drives
// the dependent team/user dropdowns.
func (r *Registry) OpenEdit(ctx context.Context, sess *domain.Session, task *domain.Task, workspaceID int64) *Form {
	form := r.newForm(sess)
	form.openEdit(ctx, task, workspaceID)
	return form
}

// Get returns the form if it exists and belongs to the session.
func (r *Registry) Get(sess *domain.Session, id string) (*Form, error) {
	r.mu.RLock()
	form, ok := r.forms[id]
	r.mu.RUnlock()
	if !ok || sess == nil || form.sess == nil || form.sess.ID != sess.ID {
		return nil, domain.ErrFormNotFound
	}
	return form, nil
}

// Close tears a form down and forgets it. In-flight submissions are not
// retracted; their late responses are discarded by the form itself.
func (r *Registry) Close(sess *domain.Session, id string) error {
	form, err := r.Get(sess, id)
	if err != nil {
		return err
	}
	form.Close()
	r.mu.Lock()
	delete(r.forms, id)
	r.mu.Unlock()
	return nil
}

// CloseSession drops every form the session still has open, the teardown
// rule for logout.
func (r *Registry) CloseSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, form := range r.forms {
		if form.sess != nil && form.sess.ID == sessionID {
			form.Close()
			delete(r.forms, id)
		}
	}
}

// Sweep drops every form whose session has expired. Expired sessions never
// log out, so without the sweep their forms would sit in the registry
// forever. Returns the number of forms dropped.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, form := range r.forms {
		if form.sess.IsExpired(now) {
			form.Close()
			delete(r.forms, id)
			dropped++
		}
	}
	return dropped
}

func (r *Registry) newForm(sess *domain.Session) *Form {
	form := newForm(uuid.NewString(), sess, deps{
		tasks:     r.tasks,
		directory: r.directory,
		onSaved:   r.onSaved,
		logger:    r.logger,
	})
	form.onClosed = func() { r.remove(form.id) }
	r.mu.Lock()
	r.forms[form.id] = form
	r.mu.Unlock()
	return form
}

// remove forgets a form that closed itself, e.g. after a successful submit.
func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
}
