package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/api/transport"
	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/pkg/httpcontext"
	authUC "github.com/worklane/boardsync/usecase/auth"
)

// SessionHandler exchanges identity-provider tokens for gateway sessions
// and tears them down on logout.
type SessionHandler struct {
	baseHandler
	uc       *authUC.UseCase
	teardown func(sessionID string)
}

// NewSessionHandler wires the session lifecycle. teardown runs on logout and
// drops every open form and invite flow the session still owns.
func NewSessionHandler(uc *authUC.UseCase, teardown func(sessionID string), adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	if teardown == nil {
		teardown = func(string) {}
	}
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		teardown:    teardown,
	}
}

// Create verifies the supplied identity token and opens a gateway session.
func (h *SessionHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.SessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Token == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "token is required", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.CreateSession(stdCtx, req.Token)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, session)
}

// Delete is logout: the session disappears and its UI state with it.
func (h *SessionHandler) Delete(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RevokeSession(stdCtx, sess.ID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.teardown(sess.ID)
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
