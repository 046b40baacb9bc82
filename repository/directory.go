package repository

import (
	"context"

	"github.com/worklane/boardsync/domain"
)

// DirectoryStore covers the workspace, team and user directory the sidebar
// and form dropdowns are fed from. The directory is owned by the remote
// store; workspace/team creation is admin-gated there.
type DirectoryStore interface {
	ListWorkspaces(ctx context.Context, sess *domain.Session) ([]domain.Workspace, error)
	CreateWorkspace(ctx context.Context, sess *domain.Session, name string) (*domain.Workspace, error)
	ListTeams(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.Team, error)
	CreateTeam(ctx context.Context, sess *domain.Session, name string, workspaceID int64) (*domain.Team, error)
	ListUsers(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.User, error)
	SearchUsers(ctx context.Context, sess *domain.Session, query string) ([]domain.User, error)
	AddMember(ctx context.Context, sess *domain.Session, workspaceID int64, email string) error
}
