package member

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
	"github.com/worklane/boardsync/usecase"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search fires.
const DefaultDebounce = 300 * time.Millisecond

// View is the render-ready projection of an invite flow.
type View struct {
	ID        string        `json:"id"`
	Query     string        `json:"query"`
	Results   []domain.User `json:"results"`
	Selected  *domain.User  `json:"selected,omitempty"`
	Searching bool          `json:"searching"`
	Error     string        `json:"error,omitempty"`
}

// Inviter manages adding one user to a workspace: debounced search,
// selection, confirm. A newer keystroke cancels the pending search timer
// and supersedes any in-flight search; only the latest query's results ever
// land.
type Inviter struct {
	id          string
	sess        *domain.Session
	workspaceID int64

	directory repository.DirectoryStore
	onAdded   usecase.ReloadFunc
	debounce  time.Duration
	logger    *zap.Logger

	mu        sync.Mutex
	query     string
	results   []domain.User
	selected  *domain.User
	searching bool
	timer     *time.Timer
	seq       uint64
	lastError string
	closed    bool
}

func newInviter(id string, sess *domain.Session, workspaceID int64, directory repository.DirectoryStore, onAdded usecase.ReloadFunc, debounce time.Duration, logger *zap.Logger) *Inviter {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if onAdded == nil {
		onAdded = usecase.NopReload
	}
	return &Inviter{
		id:          id,
		sess:        sess,
		workspaceID: workspaceID,
		directory:   directory,
		onAdded:     onAdded,
		debounce:    debounce,
		logger:      logger,
	}
}

// SetQuery registers a keystroke. Free-text edits clear any pinned
// selection, so the committed identity always matches the visible text. The
// search itself fires only after the debounce delay, and only for a
// non-empty trimmed query.
func (i *Inviter) SetQuery(q string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return domain.ErrInviteNotFound
	}

	i.query = q
	i.selected = nil
	i.lastError = ""
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	i.seq++

	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		i.results = nil
		i.searching = false
		return nil
	}

	seq := i.seq
	i.searching = true
	i.timer = time.AfterFunc(i.debounce, func() {
		i.runSearch(seq, trimmed)
	})
	return nil
}

func (i *Inviter) runSearch(seq uint64, query string) {
	i.mu.Lock()
	if i.closed || seq != i.seq {
		i.mu.Unlock()
		return
	}
	sess := i.sess
	i.mu.Unlock()

	results, err := i.directory.SearchUsers(context.Background(), sess, query)

	i.mu.Lock()
	defer i.mu.Unlock()
	// A newer keystroke or a teardown makes this response stale.
	if i.closed || seq != i.seq {
		return
	}
	i.searching = false
	if err != nil {
		i.logger.Warn("user search failed", zap.String("query", query), zap.Error(err))
		i.results = nil
		return
	}
	i.results = results
}

// Select pins a result. The result list clears so the pinned identity is
// the only candidate until the query text changes again.
func (i *Inviter) Select(userID int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return domain.ErrInviteNotFound
	}
	for _, u := range i.results {
		if u.ID == userID {
			user := u
			i.selected = &user
			i.query = u.Email
			i.results = nil
			return nil
		}
	}
	return domain.NewValidationError("selected user is not in the current results")
}

// Add commits the pinned user to the workspace. Without a pinned user it
// fails locally; on success the reload hook fires and the flow closes.
func (i *Inviter) Add(ctx context.Context) error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return domain.ErrInviteNotFound
	}
	if i.selected == nil {
		err := domain.NewValidationError("Please select a user from the list")
		i.lastError = err.Message
		i.mu.Unlock()
		return err
	}
	sess := i.sess
	workspaceID := i.workspaceID
	email := i.selected.Email
	i.mu.Unlock()

	if err := i.directory.AddMember(ctx, sess, workspaceID, email); err != nil {
		i.mu.Lock()
		if !i.closed {
			i.lastError = addFailureMessage(err)
		}
		i.mu.Unlock()
		return err
	}

	i.Close()
	i.onAdded(ctx, sess, workspaceID)
	return nil
}

// Close cancels any pending debounce timer so a late callback never touches
// a torn-down flow.
func (i *Inviter) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}

// View projects the flow for rendering.
func (i *Inviter) View() View {
	i.mu.Lock()
	defer i.mu.Unlock()
	return View{
		ID:        i.id,
		Query:     i.query,
		Results:   i.results,
		Selected:  i.selected,
		Searching: i.searching,
		Error:     i.lastError,
	}
}

func addFailureMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return "Failed to add user"
}
