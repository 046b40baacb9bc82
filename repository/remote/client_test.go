package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/worklane/boardsync/domain"
)

func testSession() *domain.Session {
	return &domain.Session{ID: "sess-1", UserID: 7, Token: "store-token"}
}

func newStoreServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, 2*time.Second, nil)
}

func TestListTaskListsSendsWorkspaceAndToken(t *testing.T) {
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/task-lists/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("workspace") != "3" {
			t.Fatalf("expected workspace=3, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer store-token" {
			t.Fatalf("expected the session token forwarded, got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode([]domain.TaskList{{ID: 1, Title: "todo"}})
	})

	lists, err := client.ListTaskLists(context.Background(), testSession(), 3)
	if err != nil {
		t.Fatalf("list task lists: %v", err)
	}
	if len(lists) != 1 || lists[0].Title != "todo" {
		t.Fatalf("unexpected lists %+v", lists)
	}
}

func TestCreatePostsPayload(t *testing.T) {
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks/" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var payload domain.TaskPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Title != "Fix bug" || payload.TaskList != 5 {
			t.Fatalf("unexpected payload %+v", payload)
		}
		json.NewEncoder(w).Encode(domain.Task{ID: 9, Title: payload.Title, TaskList: payload.TaskList})
	})

	task, err := client.Create(context.Background(), testSession(), domain.TaskPayload{
		Title:    "Fix bug",
		Priority: domain.PriorityMedium,
		Status:   domain.StatusTodo,
		TaskList: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != 9 {
		t.Fatalf("expected the created task back, got %+v", task)
	}
}

func TestUpdatePatchesOnlyEditedFields(t *testing.T) {
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tasks/9/" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode patch: %v", err)
		}
		if _, ok := raw["title"]; !ok {
			t.Fatal("expected title in the patch")
		}
		if _, ok := raw["team"]; ok {
			t.Fatal("untouched fields must be omitted from the patch")
		}
		json.NewEncoder(w).Encode(domain.Task{ID: 9, Title: "renamed"})
	})

	title := "renamed"
	task, err := client.Update(context.Background(), testSession(), 9, domain.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if task.Title != "renamed" {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestReadFailureClassifiesAsLoad(t *testing.T) {
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListTasks(context.Background(), testSession(), 1)
	if !domain.IsDomainError(err, domain.ErrCodeLoad) {
		t.Fatalf("expected LOAD classification, got %v", err)
	}
}

func TestWriteFailureCarriesStoreDetail(t *testing.T) {
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Title must be unique"})
	})

	_, err := client.Create(context.Background(), testSession(), domain.TaskPayload{Title: "dup"})
	if !domain.IsDomainError(err, domain.ErrCodeSubmission) {
		t.Fatalf("expected SUBMISSION classification, got %v", err)
	}
	var dErr *domain.Error
	if !errors.As(err, &dErr) || dErr.Message != "Title must be unique" {
		t.Fatalf("expected the store detail verbatim, got %v", err)
	}
}

func TestWriteFailureWithoutDetailFallsBack(t *testing.T) {
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.AddMember(context.Background(), testSession(), 1, "x@y")
	var dErr *domain.Error
	if !errors.As(err, &dErr) || dErr.Message != "Something went wrong" {
		t.Fatalf("expected the generic fallback, got %v", err)
	}
}

func TestSearchUsersEscapesQuery(t *testing.T) {
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/search/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "a b&c" {
			t.Fatalf("expected the query decoded intact, got %q", got)
		}
		json.NewEncoder(w).Encode([]domain.User{})
	})

	if _, err := client.SearchUsers(context.Background(), testSession(), "a b&c"); err != nil {
		t.Fatalf("search: %v", err)
	}
}

func TestUnreachableStoreIsALoadError(t *testing.T) {
	srv, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.ListTaskLists(context.Background(), testSession(), 1)
	if !domain.IsDomainError(err, domain.ErrCodeLoad) {
		t.Fatalf("expected LOAD classification for a dead store, got %v", err)
	}
}

func TestPingReportsServerErrors(t *testing.T) {
	healthy := true
	_, client := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping healthy: %v", err)
	}
	healthy = false
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to report a 5xx")
	}
}
