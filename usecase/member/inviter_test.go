package member

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/worklane/boardsync/domain"
)

type stubDirectory struct {
	mu       sync.Mutex
	searches []string
	results  []domain.User

	addFn func(ctx context.Context, sess *domain.Session, workspaceID int64, email string) error
	adds  int32
}

func (s *stubDirectory) ListWorkspaces(context.Context, *domain.Session) ([]domain.Workspace, error) {
	return nil, nil
}

func (s *stubDirectory) CreateWorkspace(context.Context, *domain.Session, string) (*domain.Workspace, error) {
	return nil, nil
}

func (s *stubDirectory) ListTeams(context.Context, *domain.Session, int64) ([]domain.Team, error) {
	return nil, nil
}

func (s *stubDirectory) CreateTeam(context.Context, *domain.Session, string, int64) (*domain.Team, error) {
	return nil, nil
}

func (s *stubDirectory) ListUsers(context.Context, *domain.Session, int64) ([]domain.User, error) {
	return nil, nil
}

func (s *stubDirectory) SearchUsers(_ context.Context, _ *domain.Session, query string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, query)
	return s.results, nil
}

func (s *stubDirectory) AddMember(ctx context.Context, sess *domain.Session, workspaceID int64, email string) error {
	atomic.AddInt32(&s.adds, 1)
	if s.addFn == nil {
		return nil
	}
	return s.addFn(ctx, sess, workspaceID, email)
}

func (s *stubDirectory) searchLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.searches))
	copy(out, s.searches)
	return out
}

func testSession() *domain.Session {
	return &domain.Session{ID: "sess-1", UserID: 7, Email: "dev@example.com", Token: "tok"}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition never met")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	dir := &stubDirectory{results: []domain.User{{ID: 2, Email: "abc@x"}}}
	reg := NewRegistry(dir, nil, 20*time.Millisecond, nil)
	inv := reg.Open(testSession(), 1)

	for _, q := range []string{"a", "ab", "abc"} {
		if err := inv.SetQuery(q); err != nil {
			t.Fatalf("set query %q: %v", q, err)
		}
	}

	waitFor(t, func() bool { return len(dir.searchLog()) > 0 })
	// Give a superseded timer a chance to fire wrongly.
	time.Sleep(60 * time.Millisecond)

	log := dir.searchLog()
	if len(log) != 1 || log[0] != "abc" {
		t.Fatalf("expected one search for the final query, got %v", log)
	}
	view := inv.View()
	if len(view.Results) != 1 || view.Results[0].ID != 2 {
		t.Fatalf("expected the final query's results, got %+v", view.Results)
	}
	if view.Searching {
		t.Fatal("expected the search spinner to clear")
	}
}

func TestEmptyQueryNeverSearches(t *testing.T) {
	dir := &stubDirectory{}
	reg := NewRegistry(dir, nil, 5*time.Millisecond, nil)
	inv := reg.Open(testSession(), 1)

	if err := inv.SetQuery("   "); err != nil {
		t.Fatalf("set query: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if log := dir.searchLog(); len(log) != 0 {
		t.Fatalf("expected no search for a blank query, got %v", log)
	}
	if view := inv.View(); view.Searching || view.Results != nil {
		t.Fatalf("expected a cleared view, got %+v", view)
	}
}

func TestNewerKeystrokeSupersedesResults(t *testing.T) {
	dir := &stubDirectory{results: []domain.User{{ID: 2, Email: "old@x"}}}
	reg := NewRegistry(dir, nil, 5*time.Millisecond, nil)
	inv := reg.Open(testSession(), 1)

	if err := inv.SetQuery("old"); err != nil {
		t.Fatalf("set query: %v", err)
	}
	waitFor(t, func() bool { return len(dir.searchLog()) == 1 })

	// Clearing the box is a newer keystroke; the landed results vanish and
	// nothing fires for the empty text.
	if err := inv.SetQuery(""); err != nil {
		t.Fatalf("clear query: %v", err)
	}
	view := inv.View()
	if view.Results != nil {
		t.Fatalf("expected the stale results cleared, got %+v", view.Results)
	}
}

func TestSelectPinsUserAndClearsResults(t *testing.T) {
	dir := &stubDirectory{results: []domain.User{{ID: 2, Email: "pick@x"}, {ID: 3, Email: "other@x"}}}
	reg := NewRegistry(dir, nil, 5*time.Millisecond, nil)
	inv := reg.Open(testSession(), 1)

	if err := inv.SetQuery("pi"); err != nil {
		t.Fatalf("set query: %v", err)
	}
	waitFor(t, func() bool { return len(inv.View().Results) == 2 })

	if err := inv.Select(99); err == nil {
		t.Fatal("expected selecting an unknown id to fail")
	}
	if err := inv.Select(2); err != nil {
		t.Fatalf("select: %v", err)
	}

	view := inv.View()
	if view.Selected == nil || view.Selected.ID != 2 {
		t.Fatalf("expected user 2 pinned, got %+v", view.Selected)
	}
	if view.Query != "pick@x" {
		t.Fatalf("expected the query to echo the pinned email, got %q", view.Query)
	}
	if view.Results != nil {
		t.Fatalf("expected results cleared after selection, got %+v", view.Results)
	}

	// Editing the text again unpins.
	if err := inv.SetQuery("pick@"); err != nil {
		t.Fatalf("set query: %v", err)
	}
	if inv.View().Selected != nil {
		t.Fatal("expected a text edit to clear the pinned selection")
	}
}

func TestAddWithoutSelectionFailsLocally(t *testing.T) {
	dir := &stubDirectory{}
	reg := NewRegistry(dir, nil, 5*time.Millisecond, nil)
	inv := reg.Open(testSession(), 1)

	err := inv.Add(context.Background())
	if err == nil || !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("expected a local validation error, got %v", err)
	}
	if atomic.LoadInt32(&dir.adds) != 0 {
		t.Fatal("an unselected add must not reach the store")
	}
	if inv.View().Error != "Please select a user from the list" {
		t.Fatalf("expected the selection prompt, got %q", inv.View().Error)
	}
}

func TestAddCommitsSelectionAndCloses(t *testing.T) {
	var reloads int32
	var gotEmail string
	dir := &stubDirectory{
		results: []domain.User{{ID: 2, Email: "pick@x"}},
		addFn: func(_ context.Context, _ *domain.Session, workspaceID int64, email string) error {
			if workspaceID != 1 {
				t.Fatalf("expected workspace 1, got %d", workspaceID)
			}
			gotEmail = email
			return nil
		},
	}
	reg := NewRegistry(dir, func(context.Context, *domain.Session, int64) {
		atomic.AddInt32(&reloads, 1)
	}, 5*time.Millisecond, nil)
	inv := reg.Open(testSession(), 1)

	if err := inv.SetQuery("pi"); err != nil {
		t.Fatalf("set query: %v", err)
	}
	waitFor(t, func() bool { return len(inv.View().Results) == 1 })
	if err := inv.Select(2); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := inv.Add(context.Background()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if gotEmail != "pick@x" {
		t.Fatalf("expected the pinned email committed, got %q", gotEmail)
	}
	if atomic.LoadInt32(&reloads) != 1 {
		t.Fatal("expected exactly one reload after a successful add")
	}
	if err := inv.SetQuery("x"); err != domain.ErrInviteNotFound {
		t.Fatalf("expected the flow to be closed after add, got %v", err)
	}
}

func TestAddFailureSurfacesStoreMessage(t *testing.T) {
	dir := &stubDirectory{
		results: []domain.User{{ID: 2, Email: "pick@x"}},
		addFn: func(context.Context, *domain.Session, int64, string) error {
			return domain.NewSubmissionError("User is already a member", nil)
		},
	}
	reg := NewRegistry(dir, nil, 5*time.Millisecond, nil)
	inv := reg.Open(testSession(), 1)

	if err := inv.SetQuery("pi"); err != nil {
		t.Fatalf("set query: %v", err)
	}
	waitFor(t, func() bool { return len(inv.View().Results) == 1 })
	if err := inv.Select(2); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := inv.Add(context.Background()); err == nil {
		t.Fatal("expected the store failure to surface")
	}
	view := inv.View()
	if view.Error != "User is already a member" {
		t.Fatalf("expected the store message verbatim, got %q", view.Error)
	}
	if view.Selected == nil {
		t.Fatal("expected the flow to stay open for retry")
	}
}

func TestSweepDropsExpiredSessionFlows(t *testing.T) {
	dir := &stubDirectory{}
	reg := NewRegistry(dir, nil, 20*time.Millisecond, nil)
	now := time.Now()

	live := &domain.Session{ID: "sess-live", UserID: 7, Token: "t", ExpiresAt: now.Add(time.Hour)}
	stale := &domain.Session{ID: "sess-stale", UserID: 8, Token: "t", ExpiresAt: now.Add(-time.Minute)}

	kept := reg.Open(live, 1)
	dropped := reg.Open(stale, 1)
	if err := dropped.SetQuery("abc"); err != nil {
		t.Fatalf("set query: %v", err)
	}

	if n := reg.Sweep(now); n != 1 {
		t.Fatalf("expected one flow swept, got %d", n)
	}
	if _, err := reg.Get(live, kept.id); err != nil {
		t.Fatalf("expected the live session's flow kept, got %v", err)
	}
	if _, err := reg.Get(stale, dropped.id); err != domain.ErrInviteNotFound {
		t.Fatalf("expected the expired session's flow dropped, got %v", err)
	}

	// The swept flow's pending search died with it.
	time.Sleep(60 * time.Millisecond)
	if log := dir.searchLog(); len(log) != 0 {
		t.Fatalf("expected the pending search cancelled, got %v", log)
	}
}

func TestCloseCancelsPendingSearch(t *testing.T) {
	dir := &stubDirectory{}
	reg := NewRegistry(dir, nil, 20*time.Millisecond, nil)
	sess := testSession()
	inv := reg.Open(sess, 1)

	if err := inv.SetQuery("abc"); err != nil {
		t.Fatalf("set query: %v", err)
	}
	if err := reg.Close(sess, inv.id); err != nil {
		t.Fatalf("close: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if log := dir.searchLog(); len(log) != 0 {
		t.Fatalf("expected the pending search cancelled, got %v", log)
	}
	if _, err := reg.Get(sess, inv.id); err != domain.ErrInviteNotFound {
		t.Fatalf("expected the flow to be forgotten, got %v", err)
	}
}
