package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/api/transport"
	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/pkg/httpcontext"
	directoryUC "github.com/worklane/boardsync/usecase/directory"
)

// DirectoryHandler serves the sidebar: workspaces and teams.
type DirectoryHandler struct {
	baseHandler
	uc *directoryUC.UseCase
}

func NewDirectoryHandler(uc *directoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// ListWorkspaces degrades to an empty list with a notice on load failure.
func (h *DirectoryHandler) ListWorkspaces(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	workspaces, err := h.uc.ListWorkspaces(stdCtx, sess)
	if err != nil {
		h.respondJSON(ctx, http.StatusOK, transport.NewDegraded(workspaces, loadNotice(err)))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, workspaces)
}

func (h *DirectoryHandler) CreateWorkspace(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	var req transport.CreateWorkspaceRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	workspace, err := h.uc.CreateWorkspace(stdCtx, sess, req.Name)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, workspace)
}

func (h *DirectoryHandler) ListTeams(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	workspaceID := parseInt64(string(ctx.QueryArgs().Peek("workspace")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	teams, err := h.uc.ListTeams(stdCtx, sess, workspaceID)
	if err != nil {
		h.respondJSON(ctx, http.StatusOK, transport.NewDegraded(teams, loadNotice(err)))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, teams)
}

func (h *DirectoryHandler) CreateTeam(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	var req transport.CreateTeamRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	team, err := h.uc.CreateTeam(stdCtx, sess, req.Name, req.Workspace)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, team)
}
