package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/api/transport"
	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/pkg/httpcontext"
	boardUC "github.com/worklane/boardsync/usecase/board"
	"github.com/worklane/boardsync/usecase/taskform"
)

// FormHandler dispatches task form intents: open, edit fields, submit,
// publish, close. Form state lives gateway-side in the registry.
type FormHandler struct {
	baseHandler
	forms  *taskform.Registry
	holder *boardUC.Holder
}

func NewFormHandler(forms *taskform.Registry, holder *boardUC.Holder, adapter *httpcontext.Adapter, logger *zap.Logger) *FormHandler {
	return &FormHandler{
		baseHandler: newBaseHandler(adapter, logger),
		forms:       forms,
		holder:      holder,
	}
}

// Open starts a form. A task id means edit mode seeded from the task on the
// current snapshot; otherwise the kind picks the creation variant.
func (h *FormHandler) Open(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}

	var req transport.OpenFormRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if req.TaskID != 0 {
		snapshot, ok := h.holder.Current(req.WorkspaceID)
		if !ok {
			h.respondJSON(ctx, http.StatusNotFound, transport.NewError(string(domain.ErrCodeNotFound), "board not loaded", nil))
			return
		}
		task, ok := snapshot.FindTask(req.TaskID)
		if !ok {
			h.respondJSON(ctx, http.StatusNotFound, transport.NewError(string(domain.ErrCodeNotFound), "task not on board", nil))
			return
		}
		form := h.forms.OpenEdit(stdCtx, sess, task, req.WorkspaceID)
		h.respondSuccess(ctx, http.StatusCreated, form.View())
		return
	}

	creation, ok := creationContext(req)
	if !ok {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "unknown form kind", nil))
		return
	}
	form := h.forms.OpenCreate(stdCtx, sess, creation)
	h.respondSuccess(ctx, http.StatusCreated, form.View())
}

// Get serves the form's current state, including its dropdown options.
func (h *FormHandler) Get(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	form, err := h.forms.Get(sess, formID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, form.View())
}

// Apply merges field edits into the form. Edits stay local until submit.
func (h *FormHandler) Apply(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	form, err := h.forms.Get(sess, formID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var edits taskform.Edits
	if err := json.Unmarshal(ctx.PostBody(), &edits); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := form.Apply(stdCtx, edits); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, form.View())
}

// Submit validates and persists the form. On success the board has already
// been reloaded and the form is closed.
func (h *FormHandler) Submit(ctx *fasthttp.RequestCtx) {
	h.finish(ctx, false)
}

// Publish is the one-way submit variant forcing is_published.
func (h *FormHandler) Publish(ctx *fasthttp.RequestCtx) {
	h.finish(ctx, true)
}

func (h *FormHandler) finish(ctx *fasthttp.RequestCtx, publish bool) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	form, err := h.forms.Get(sess, formID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if publish {
		err = form.Publish(stdCtx)
	} else {
		err = form.Submit(stdCtx)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, form.View())
}

// Close tears the form down without retracting in-flight work.
func (h *FormHandler) Close(ctx *fasthttp.RequestCtx) {
	sess := h.session(ctx)
	if sess == nil {
		return
	}
	if err := h.forms.Close(sess, formID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func formID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func creationContext(req transport.OpenFormRequest) (taskform.CreationContext, bool) {
	switch taskform.ContextKind(req.Kind) {
	case taskform.WorkspaceScoped:
		return taskform.CreationContext{Kind: taskform.WorkspaceScoped, WorkspaceID: req.WorkspaceID}, true
	case taskform.ColumnScoped:
		return taskform.CreationContext{Kind: taskform.ColumnScoped, WorkspaceID: req.WorkspaceID, ListID: req.ListID}, true
	case taskform.TeamScoped:
		return taskform.CreationContext{Kind: taskform.TeamScoped, WorkspaceID: req.WorkspaceID, TeamID: req.TeamID}, true
	}
	return taskform.CreationContext{}, false
}
