package service

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/membership"
	"github.com/Tomlord1122/taskhub/internal/repository"
	"github.com/Tomlord1122/taskhub/internal/validation"
)

// Requester identifies the authenticated caller of a project operation.
type Requester struct {
	UserID uint
	Staff  bool
}

func (r Requester) scope() repository.ProjectScope {
	return repository.ProjectScope{UserID: r.UserID, Unrestricted: r.Staff}
}

type CreateProjectRequest struct {
	Name       string `json:"name" validate:"required,max=150"`
	MaxMembers uint   `json:"max_members" validate:"min=1"`
	Status     int    `json:"status" validate:"oneof=0 1 2"`
}

type ProjectResponse struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	Status              int    `json:"status"`
	StatusDisplay       string `json:"status_display"`
	MaxMembers          uint   `json:"max_members"`
	ExistingMemberCount int    `json:"existing_member_count"`
}

// ProjectSnapshotResponse is the membership view of a single project.
type ProjectSnapshotResponse struct {
	ID              uint   `json:"id"`
	MaxMembers      int    `json:"max_members"`
	ExistingMembers int    `json:"existing_members"`
	Users           []uint `json:"users"`
}

// MembersRequest carries the raw batch of user ids for add or remove. The
// size limits apply before duplicates collapse.
type MembersRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1,max=10"`
}

// MembersResponse maps every requested user id to its outcome message.
type MembersResponse struct {
	Logs map[uint]string `json:"logs"`
}

// ProjectService manages projects and their membership.
type ProjectService interface {
	CreateProject(ctx context.Context, who Requester, req CreateProjectRequest) (*ProjectResponse, error)
	ListProjects(ctx context.Context, who Requester) ([]ProjectResponse, error)
	GetProject(ctx context.Context, who Requester, projectID uint) (*ProjectSnapshotResponse, error)
	AddMembers(ctx context.Context, who Requester, projectID uint, req MembersRequest) (*MembersResponse, error)
	RemoveMembers(ctx context.Context, who Requester, projectID uint, req MembersRequest) (*MembersResponse, error)
}

type projectService struct {
	repo   repository.ProjectRepository
	logger *zap.Logger
}

func NewProjectService(repo repository.ProjectRepository, logger *zap.Logger) ProjectService {
	return &projectService{
		repo:   repo,
		logger: logger.Named("projects"),
	}
}

func (s *projectService) CreateProject(ctx context.Context, who Requester, req CreateProjectRequest) (*ProjectResponse, error) {
	if !who.Staff {
		return nil, domain.ErrForbidden
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:       req.Name,
		MaxMembers: req.MaxMembers,
		Status:     domain.ProjectStatus(req.Status),
	}
	if err := s.repo.Create(ctx, project); err != nil {
		s.logger.Error("create project", zap.Error(err))
		return nil, err
	}

	s.logger.Info("project created", zap.Uint("project_id", project.ID), zap.Uint("by", who.UserID))
	return &ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		Status:        int(project.Status),
		StatusDisplay: project.Status.String(),
		MaxMembers:    project.MaxMembers,
	}, nil
}

func (s *projectService) ListProjects(ctx context.Context, who Requester) ([]ProjectResponse, error) {
	projects, err := s.repo.List(ctx, who.scope())
	if err != nil {
		return nil, err
	}

	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectResponse{
			ID:                  p.ID,
			Name:                p.Name,
			Status:              int(p.Status),
			StatusDisplay:       p.Status.String(),
			MaxMembers:          p.MaxMembers,
			ExistingMemberCount: p.ExistingMemberCount,
		})
	}
	return out, nil
}

func (s *projectService) GetProject(ctx context.Context, who Requester, projectID uint) (*ProjectSnapshotResponse, error) {
	snap, err := s.repo.Snapshot(ctx, projectID, who.scope())
	if err != nil {
		return nil, err
	}

	users := make([]uint, 0, len(snap.Members))
	for id := range snap.Members {
		users = append(users, id)
	}
	slices.Sort(users)
	return &ProjectSnapshotResponse{
		ID:              snap.ID,
		MaxMembers:      snap.MaxMembers,
		ExistingMembers: snap.ExistingMembers,
		Users:           users,
	}, nil
}

// AddMembers validates the batch, plans it against a fresh snapshot and
// inserts the accepted memberships, all inside one transaction.
func (s *projectService) AddMembers(ctx context.Context, who Requester, projectID uint, req MembersRequest) (*MembersResponse, error) {
	return s.mutate(ctx, who, projectID, req, "add", membership.PlanAdd,
		func(ctx context.Context, repo repository.ProjectRepository, ids []uint) error {
			return repo.AddMembers(ctx, projectID, ids)
		})
}

// RemoveMembers validates the batch and deletes the memberships of current
// members in one statement, inside one transaction.
func (s *projectService) RemoveMembers(ctx context.Context, who Requester, projectID uint, req MembersRequest) (*MembersResponse, error) {
	return s.mutate(ctx, who, projectID, req, "remove", membership.PlanRemove,
		func(ctx context.Context, repo repository.ProjectRepository, ids []uint) error {
			_, err := repo.RemoveMembers(ctx, projectID, ids)
			return err
		})
}

type planFunc func(domain.ProjectSnapshot, membership.Resolved) membership.Plan

type applyFunc func(ctx context.Context, repo repository.ProjectRepository, ids []uint) error

func (s *projectService) mutate(
	ctx context.Context,
	who Requester,
	projectID uint,
	req MembersRequest,
	action string,
	plan planFunc,
	apply applyFunc,
) (*MembersResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	requested := membership.Dedup(req.UserIDs)

	var result membership.Plan
	err := s.repo.WithinTransaction(ctx, func(tx repository.ProjectRepository) error {
		snap, err := tx.Snapshot(ctx, projectID, who.scope())
		if err != nil {
			return err
		}

		counts, err := tx.ProjectCounts(ctx, membership.Candidates(requested))
		if err != nil {
			return err
		}

		resolved, err := membership.Resolve(requested, counts)
		if err != nil {
			return err
		}

		result = plan(snap, resolved)
		if len(result.Apply) == 0 {
			return nil
		}
		return apply(ctx, tx, result.Apply)
	})
	if err != nil {
		var invalid *membership.InvalidIDsError
		if errors.As(err, &invalid) {
			return nil, invalid.ValidationError()
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error(action+" members",
				zap.Uint("project_id", projectID),
				zap.Int64s("user_ids", requested),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info(action+" members",
		zap.Uint("project_id", projectID),
		zap.Uint("by", who.UserID),
		zap.Uints("applied", result.Apply),
		zap.Int("requested", len(requested)))
	return &MembersResponse{Logs: result.Logs()}, nil
}
