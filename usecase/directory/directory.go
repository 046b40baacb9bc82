package directory

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
)

// UseCase serves the sidebar: workspace and team listing plus the
// admin-gated creates. The directory itself is owned by the remote store;
// a create is always followed by a re-list on the caller's side.
type UseCase struct {
	directory repository.DirectoryStore
	logger    *zap.Logger
}

func New(directory repository.DirectoryStore, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		directory: directory,
		logger:    logger,
	}
}

// ListWorkspaces returns the caller's workspaces. A load failure degrades
// to an empty list plus the error for a notice; the sidebar always renders.
func (uc *UseCase) ListWorkspaces(ctx context.Context, sess *domain.Session) ([]domain.Workspace, error) {
	workspaces, err := uc.directory.ListWorkspaces(ctx, sess)
	if err != nil {
		uc.logger.Warn("workspace list failed", zap.Error(err))
		return []domain.Workspace{}, err
	}
	return workspaces, nil
}

func (uc *UseCase) CreateWorkspace(ctx context.Context, sess *domain.Session, name string) (*domain.Workspace, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("workspace name is required")
	}
	return uc.directory.CreateWorkspace(ctx, sess, name)
}

// ListTeams returns the teams of one workspace; team choice is only valid
// within a workspace, so an unselected workspace yields an empty list
// without a store call.
func (uc *UseCase) ListTeams(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.Team, error) {
	if workspaceID == 0 {
		return []domain.Team{}, nil
	}
	teams, err := uc.directory.ListTeams(ctx, sess, workspaceID)
	if err != nil {
		uc.logger.Warn("team list failed", zap.Int64("workspace", workspaceID), zap.Error(err))
		return []domain.Team{}, err
	}
	return teams, nil
}

func (uc *UseCase) CreateTeam(ctx context.Context, sess *domain.Session, name string, workspaceID int64) (*domain.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("team name is required")
	}
	if workspaceID == 0 {
		return nil, domain.NewValidationError("workspace is required")
	}
	return uc.directory.CreateTeam(ctx, sess, name, workspaceID)
}
