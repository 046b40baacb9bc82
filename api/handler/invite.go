package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/api/transport"
	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/pkg/httpcontext"
	"github.com/worklane/boardsync/usecase/member"
)

// InviteHandler dispatches the add-people flow: open, type, pick, confirm.
type InviteHandler struct {
	baseHandler
	invites *member.Registry
}

func NewInviteHandler(invites *member.Registry, adapter *httpcontext.Adapter, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{
		baseHandler: newBaseHandler(adapter, logger),
		invites:     invites,
	}
}

// Open starts an invite flow for a workspace.
func (h *InviteHandler) Open(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	var req transport.OpenInviteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Workspace == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "workspace is required", nil))
		return
	}

	inv := h.invites.Open(sess, req.Workspace)
	h.respondSuccess(ctx, http.StatusCreated, inv.View())
}

// Query registers a keystroke; the debounced search fires on its own later.
func (h *InviteHandler) Query(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	inv, err := h.invites.Get(sess, inviteID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.InviteQueryRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	if err := inv.SetQuery(req.Query); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, inv.View())
}

// Get serves the flow's current state, results included once the search
// settled.
func (h *InviteHandler) Get(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	inv, err := h.invites.Get(sess, inviteID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, inv.View())
}

// Select pins one search result.
func (h *InviteHandler) Select(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	inv, err := h.invites.Get(sess, inviteID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.InviteSelectRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.UserID == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "user_id is required", nil))
		return
	}

	if err := inv.Select(req.UserID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, inv.View())
}

// Add commits the pinned user to the workspace and closes the flow.
func (h *InviteHandler) Add(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	id := inviteID(ctx)
	inv, err := h.invites.Get(sess, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := inv.Add(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	_ = h.invites.Close(sess, id)
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// Close tears the flow down, cancelling any pending search.
func (h *InviteHandler) Close(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	if err := h.invites.Close(sess, inviteID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func inviteID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}
