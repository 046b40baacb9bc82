package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/internal/infrastructure/monitor"
	"github.com/worklane/boardsync/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check reports the gateway's view of its collaborators. A degraded
// collaborator is reported, not fatal; the gateway itself keeps serving.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	code := http.StatusOK
	if !h.monitor.IsOnline() {
		code = http.StatusServiceUnavailable
	}
	h.respondSuccess(ctx, code, status)
}
