package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/worklane/boardsync/api/handler"
)

type Handlers struct {
	Session   *apiHandler.SessionHandler
	Board     *apiHandler.BoardHandler
	Form      *apiHandler.FormHandler
	Invite    *apiHandler.InviteHandler
	Directory *apiHandler.DirectoryHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session lifecycle
	r.POST("/api/v1/session", handlers.Session.Create)
	r.DELETE("/api/v1/session", authMiddleware(handlers.Session.Delete))

	// Board
	r.GET("/api/v1/board", authMiddleware(handlers.Board.GetBoard))
	r.POST("/api/v1/board/reload", authMiddleware(handlers.Board.Reload))

	// Task form intents
	r.POST("/api/v1/forms", authMiddleware(handlers.Form.Open))
	r.GET("/api/v1/forms/{id}", authMiddleware(handlers.Form.Get))
	r.PATCH("/api/v1/forms/{id}", authMiddleware(handlers.Form.Apply))
	r.POST("/api/v1/forms/{id}/submit", authMiddleware(handlers.Form.Submit))
	r.POST("/api/v1/forms/{id}/publish", authMiddleware(handlers.Form.Publish))
	r.DELETE("/api/v1/forms/{id}", authMiddleware(handlers.Form.Close))

	// Invite flow intents
	r.POST("/api/v1/invites", authMiddleware(handlers.Invite.Open))
	r.GET("/api/v1/invites/{id}", authMiddleware(handlers.Invite.Get))
	r.PATCH("/api/v1/invites/{id}/query", authMiddleware(handlers.Invite.Query))
	r.POST("/api/v1/invites/{id}/select", authMiddleware(handlers.Invite.Select))
	r.POST("/api/v1/invites/{id}/add", authMiddleware(handlers.Invite.Add))
	r.DELETE("/api/v1/invites/{id}", authMiddleware(handlers.Invite.Close))

	// Sidebar directory
	r.GET("/api/v1/workspaces", authMiddleware(handlers.Directory.ListWorkspaces))
	r.POST("/api/v1/workspaces", authMiddleware(handlers.Directory.CreateWorkspace))
	r.GET("/api/v1/teams", authMiddleware(handlers.Directory.ListTeams))
	r.POST("/api/v1/teams", authMiddleware(handlers.Directory.CreateTeam))

	return r
}
