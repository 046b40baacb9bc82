package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/internal/middleware"
	boardUC "github.com/worklane/boardsync/usecase/board"
)

type stubBoardStore struct {
	lists []domain.TaskList
	tasks []domain.Task
	err   error
}

func (s *stubBoardStore) ListTaskLists(context.Context, *domain.Session, int64) ([]domain.TaskList, error) {
	return s.lists, s.err
}

func (s *stubBoardStore) ListTasks(context.Context, *domain.Session, int64) ([]domain.Task, error) {
	return s.tasks, s.err
}

type boardEnvelope struct {
	Status string    `json:"status"`
	Data   BoardView `json:"data"`
	Meta   struct {
		Message string `json:"message"`
	} `json:"meta"`
}

func boardRequest(path string, sess *domain.Session) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI(path)
	if sess != nil {
		ctx.SetUserValue(middleware.SessionKey, sess)
	}
	return ctx
}

func decodeBoard(t *testing.T, ctx *fasthttp.RequestCtx) boardEnvelope {
	t.Helper()
	var env boardEnvelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func TestGetBoardRendersColumnsWithEmptyMarkers(t *testing.T) {
	store := &stubBoardStore{
		lists: []domain.TaskList{{ID: 1, Title: "todo"}, {ID: 2, Title: "done"}},
		tasks: []domain.Task{{ID: 9, TaskList: 1, Title: "Fix bug"}},
	}
	holder := boardUC.NewHolder(boardUC.NewLoader(store, nil), nil)
	h := NewBoardHandler(holder, nil, nil)

	sess := &domain.Session{ID: "sess-1", UserID: 7, Token: "t"}
	ctx := boardRequest("/api/v1/board?workspace=1", sess)
	h.GetBoard(ctx)

	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
	env := decodeBoard(t, ctx)
	if len(env.Data.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %+v", env.Data.Columns)
	}
	first, second := env.Data.Columns[0], env.Data.Columns[1]
	if first.Title != "todo" || len(first.Tasks) != 1 || first.Tasks[0].Title != "Fix bug" {
		t.Fatalf("unexpected first column %+v", first)
	}
	if first.Empty {
		t.Fatal("a column with tasks must not carry the empty marker")
	}
	if !second.Empty || len(second.Tasks) != 0 {
		t.Fatalf("expected the done column rendered empty, got %+v", second)
	}
}

func TestGetBoardRequiresWorkspace(t *testing.T) {
	holder := boardUC.NewHolder(boardUC.NewLoader(&stubBoardStore{}, nil), nil)
	h := NewBoardHandler(holder, nil, nil)

	ctx := boardRequest("/api/v1/board", &domain.Session{ID: "sess-1", UserID: 7, Token: "t"})
	h.GetBoard(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400 without a workspace, got %d", ctx.Response.StatusCode())
	}
}

func TestGetBoardWithoutSessionIs401(t *testing.T) {
	holder := boardUC.NewHolder(boardUC.NewLoader(&stubBoardStore{}, nil), nil)
	h := NewBoardHandler(holder, nil, nil)

	ctx := boardRequest("/api/v1/board?workspace=1", nil)
	h.GetBoard(ctx)
	if ctx.Response.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", ctx.Response.StatusCode())
	}
}

func TestReloadDegradesWhenStoreFails(t *testing.T) {
	store := &stubBoardStore{err: domain.NewLoadError("store down", nil)}
	holder := boardUC.NewHolder(boardUC.NewLoader(store, nil), nil)
	h := NewBoardHandler(holder, nil, nil)

	ctx := boardRequest("/api/v1/board/reload?workspace=1", &domain.Session{ID: "sess-1", UserID: 7, Token: "t"})
	h.Reload(ctx)

	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("a failed load must still render, got %d", ctx.Response.StatusCode())
	}
	env := decodeBoard(t, ctx)
	if len(env.Data.Columns) != 0 {
		t.Fatalf("expected an empty board, got %+v", env.Data.Columns)
	}
	if env.Meta.Message != "store down" {
		t.Fatalf("expected the load notice, got %q", env.Meta.Message)
	}
}

func TestGetBoardServesInstalledSnapshotWithoutRefetch(t *testing.T) {
	store := &stubBoardStore{lists: []domain.TaskList{{ID: 1, Title: "todo"}}}
	holder := boardUC.NewHolder(boardUC.NewLoader(store, nil), nil)
	h := NewBoardHandler(holder, nil, nil)
	sess := &domain.Session{ID: "sess-1", UserID: 7, Token: "t"}

	if _, err := holder.Reload(context.Background(), sess, 1); err != nil {
		t.Fatalf("seed reload: %v", err)
	}
	store.err = domain.NewLoadError("store down", nil)

	ctx := boardRequest("/api/v1/board?workspace=1", sess)
	h.GetBoard(ctx)

	env := decodeBoard(t, ctx)
	if env.Status != "success" || len(env.Data.Columns) != 1 {
		t.Fatalf("expected the installed snapshot served, got %+v", env)
	}
}
