package handler

import (
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/api/transport"
	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/pkg/httpcontext"
	boardUC "github.com/worklane/boardsync/usecase/board"
)

// BoardHandler is the board renderer surface: it maps the current snapshot
// into columns-of-tasks and exposes reload as the only way to change it.
type BoardHandler struct {
	baseHandler
	holder *boardUC.Holder
}

func NewBoardHandler(holder *boardUC.Holder, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		holder:      holder,
	}
}

// ColumnView is one rendered board column. Empty marks a loaded column with
// zero tasks, distinguishing "no data" from "loading".
type ColumnView struct {
	ID    int64         `json:"id"`
	Title string        `json:"title"`
	Tasks []domain.Task `json:"tasks"`
	Empty bool          `json:"empty"`
}

// BoardView is the rendered snapshot.
type BoardView struct {
	Workspace int64        `json:"workspace"`
	Columns   []ColumnView `json:"columns"`
}

// GetBoard serves the current snapshot, loading it first if the workspace
// has none yet.
func (h *BoardHandler) GetBoard(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	workspaceID := parseInt64(string(ctx.QueryArgs().Peek("workspace")), 0)
	if workspaceID == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "workspace is required", nil))
		return
	}

	if snapshot, ok := h.holder.Current(workspaceID); ok {
		h.respondSuccess(ctx, http.StatusOK, renderBoard(snapshot))
		return
	}

	h.reload(ctx, sess, workspaceID)
}

// Reload re-fetches the workspace board from the store and serves the fresh
// snapshot.
func (h *BoardHandler) Reload(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	workspaceID := parseInt64(string(ctx.QueryArgs().Peek("workspace")), 0)
	if workspaceID == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "workspace is required", nil))
		return
	}

	h.reload(ctx, sess, workspaceID)
}

func (h *BoardHandler) reload(ctx *fasthttp.RequestCtx, sess *domain.Session, workspaceID int64) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snapshot, err := h.holder.Reload(stdCtx, sess, workspaceID)
	if err != nil {
		// Fail-soft: an empty board plus a notice, never a page failure.
		h.respondJSON(ctx, http.StatusOK, transport.NewDegraded(renderBoard(snapshot), loadNotice(err)))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, renderBoard(snapshot))
}

func renderBoard(snapshot *domain.BoardSnapshot) BoardView {
	view := BoardView{
		Workspace: snapshot.Workspace,
		Columns:   make([]ColumnView, len(snapshot.Columns)),
	}
	for i, col := range snapshot.Columns {
		view.Columns[i] = ColumnView{
			ID:    col.List.ID,
			Title: col.List.Title,
			Tasks: col.Tasks,
			Empty: col.IsEmpty(),
		}
	}
	return view
}

func loadNotice(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return "failed to load board"
}
