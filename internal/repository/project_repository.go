package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Tomlord1122/taskhub/internal/domain"
)

// ProjectScope limits which projects a caller can see. Members see the
// projects they belong to; Unrestricted callers (staff) see all of them.
type ProjectScope struct {
	UserID       uint
	Unrestricted bool
}

// ProjectRepository defines project and membership data operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	List(ctx context.Context, scope ProjectScope) ([]domain.ProjectSummary, error)
	// Snapshot reads id, capacity, member count and member ids of a project
	// visible in scope. It returns domain.ErrNotFound otherwise.
	Snapshot(ctx context.Context, projectID uint, scope ProjectScope) (domain.ProjectSnapshot, error)
	// ProjectCounts returns the number of project memberships for each of the
	// given ids that belongs to an existing user. Unknown ids are absent.
	ProjectCounts(ctx context.Context, userIDs []uint) (map[uint]int, error)
	AddMembers(ctx context.Context, projectID uint, userIDs []uint) error
	RemoveMembers(ctx context.Context, projectID uint, userIDs []uint) (int64, error)
	// WithinTransaction runs fn against a repository bound to one transaction.
	WithinTransaction(ctx context.Context, fn func(repo ProjectRepository) error) error
}

type gormProjectRepository struct {
	db *gorm.DB
}

func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return translate("create project", r.db.WithContext(ctx).Create(project).Error)
}

func (r *gormProjectRepository) scoped(ctx context.Context, scope ProjectScope) *gorm.DB {
	db := r.db.WithContext(ctx).
		Table("projects AS p").
		Joins("LEFT JOIN project_memberships AS pm ON pm.project_id = p.id")
	if !scope.Unrestricted {
		db = db.Where(
			"EXISTS (SELECT 1 FROM project_memberships AS r WHERE r.project_id = p.id AND r.user_id = ?)",
			scope.UserID,
		)
	}
	return db
}

func (r *gormProjectRepository) List(ctx context.Context, scope ProjectScope) ([]domain.ProjectSummary, error) {
	var rows []domain.ProjectSummary
	err := r.scoped(ctx, scope).
		Select("p.id, p.name, p.status, p.max_members, COUNT(pm.id) AS existing_member_count").
		Group("p.id").
		Order("p.id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("list projects", err)
	}
	return rows, nil
}

type snapshotRow struct {
	ID              uint
	MaxMembers      int
	ExistingMembers int
	Users           pq.Int64Array
}

func (r *gormProjectRepository) Snapshot(ctx context.Context, projectID uint, scope ProjectScope) (domain.ProjectSnapshot, error) {
	var row snapshotRow
	result := r.scoped(ctx, scope).
		Select(`p.id, p.max_members, COUNT(pm.id) AS existing_members,
			COALESCE(ARRAY_AGG(pm.user_id) FILTER (WHERE pm.user_id IS NOT NULL), '{}') AS users`).
		Where("p.id = ?", projectID).
		Group("p.id").
		Scan(&row)
	if result.Error != nil {
		return domain.ProjectSnapshot{}, translate("project snapshot", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ProjectSnapshot{}, translate("project snapshot", gorm.ErrRecordNotFound)
	}

	members := make([]uint, 0, len(row.Users))
	for _, id := range row.Users {
		members = append(members, uint(id))
	}
	return domain.NewProjectSnapshot(row.ID, row.MaxMembers, row.ExistingMembers, members), nil
}

type projectCountRow struct {
	UserID       uint
	ProjectCount int
}

func (r *gormProjectRepository) ProjectCounts(ctx context.Context, userIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []projectCountRow
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select("u.id AS user_id, COUNT(pm.id) AS project_count").
		Joins("LEFT JOIN project_memberships AS pm ON pm.user_id = u.id").
		Where("u.id IN ?", userIDs).
		Group("u.id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("count user projects", err)
	}

	for _, row := range rows {
		counts[row.UserID] = row.ProjectCount
	}
	return counts, nil
}

// AddMembers inserts all memberships in one statement.
func (r *gormProjectRepository) AddMembers(ctx context.Context, projectID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]domain.ProjectMembership, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, domain.ProjectMembership{ProjectID: projectID, UserID: id})
	}
	return translate("add project members", r.db.WithContext(ctx).Create(&rows).Error)
}

// RemoveMembers deletes the memberships of userIDs in one statement and
// returns how many rows went away.
func (r *gormProjectRepository) RemoveMembers(ctx context.Context, projectID uint, userIDs []uint) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id IN ?", projectID, userIDs).
		Delete(&domain.ProjectMembership{})
	if result.Error != nil {
		return 0, translate("remove project members", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormProjectRepository) WithinTransaction(ctx context.Context, fn func(repo ProjectRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormProjectRepository{db: tx})
	})
}
