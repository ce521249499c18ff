package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Tomlord1122/taskhub/internal/domain"
)

// ReportRepository runs the read-only aggregate reports. Each call is a
// single pass over current state.
type ReportRepository interface {
	Users(ctx context.Context) ([]domain.UserRecord, error)
	TodosWithCreator(ctx context.Context) ([]domain.TodoWithCreator, error)
	ProjectDetails(ctx context.Context) ([]domain.ProjectDetail, error)
	TodoStats(ctx context.Context) ([]domain.UserTodoStats, error)
	TopPending(ctx context.Context, limit uint64) ([]domain.UserPendingCount, error)
	UsersWithPending(ctx context.Context, n int64) ([]domain.UserPendingCount, error)
	ProjectsWithMemberName(ctx context.Context, prefix, suffix string) ([]domain.ProjectBrief, error)
	ProjectWise(ctx context.Context) ([]domain.ProjectReport, error)
	UserWiseProjectStatus(ctx context.Context) ([]domain.UserProjectStatus, error)
}

type sqlxReportRepository struct {
	db sqlx.QueryerContext
	sb squirrel.StatementBuilderType
}

func NewSqlxReportRepository(db sqlx.QueryerContext) ReportRepository {
	return &sqlxReportRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const (
	pendingCase   = "CASE WHEN NOT t.done THEN 1 END"
	completedCase = "CASE WHEN t.done THEN 1 END"
)

func (r *sqlxReportRepository) selectInto(ctx context.Context, op string, dest any, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return translate(op, err)
	}
	return translate(op, sqlx.SelectContext(ctx, r.db, dest, query, args...))
}

func (r *sqlxReportRepository) Users(ctx context.Context) ([]domain.UserRecord, error) {
	q := r.sb.Select("id", "first_name", "last_name", "email").
		From("users").
		OrderBy("id")

	var rows []struct {
		ID        uint   `db:"id"`
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
		Email     string `db:"email"`
	}
	if err := r.selectInto(ctx, "report users", &rows, q); err != nil {
		return nil, err
	}

	out := make([]domain.UserRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserRecord(row))
	}
	return out, nil
}

func (r *sqlxReportRepository) TodosWithCreator(ctx context.Context) ([]domain.TodoWithCreator, error) {
	q := r.sb.Select("t.id", "t.name", "t.done", "t.date_created", "u.first_name", "u.last_name", "u.email").
		From("todos AS t").
		Join("users AS u ON u.id = t.user_id").
		OrderBy("t.id")

	var rows []struct {
		ID          uint      `db:"id"`
		Name        string    `db:"name"`
		Done        bool      `db:"done"`
		DateCreated time.Time `db:"date_created"`
		FirstName   string    `db:"first_name"`
		LastName    string    `db:"last_name"`
		Email       string    `db:"email"`
	}
	if err := r.selectInto(ctx, "report todos", &rows, q); err != nil {
		return nil, err
	}

	out := make([]domain.TodoWithCreator, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.TodoWithCreator{
			ID:        row.ID,
			Name:      row.Name,
			Status:    domain.TodoStatusLabel(row.Done),
			CreatedAt: domain.FormatReportTime(row.DateCreated),
			Creator: domain.Creator{
				FirstName: row.FirstName,
				LastName:  row.LastName,
				Email:     row.Email,
			},
		})
	}
	return out, nil
}

func (r *sqlxReportRepository) ProjectDetails(ctx context.Context) ([]domain.ProjectDetail, error) {
	q := r.sb.Select("p.id", "p.name", "p.status", "p.max_members", "COUNT(pm.id) AS existing_member_count").
		From("projects AS p").
		LeftJoin("project_memberships AS pm ON pm.project_id = p.id").
		GroupBy("p.id").
		OrderBy("p.id")

	var rows []struct {
		ID                  uint                 `db:"id"`
		Name                string               `db:"name"`
		Status              domain.ProjectStatus `db:"status"`
		MaxMembers          uint                 `db:"max_members"`
		ExistingMemberCount int                  `db:"existing_member_count"`
	}
	if err := r.selectInto(ctx, "report projects", &rows, q); err != nil {
		return nil, err
	}

	out := make([]domain.ProjectDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ProjectDetail{
			ID:                  row.ID,
			Name:                row.Name,
			Status:              row.Status.String(),
			ExistingMemberCount: row.ExistingMemberCount,
			MaxMembers:          row.MaxMembers,
		})
	}
	return out, nil
}

func (r *sqlxReportRepository) userTodos() squirrel.SelectBuilder {
	return r.sb.Select("u.id", "u.first_name", "u.last_name", "u.email").
		From("users AS u").
		LeftJoin("todos AS t ON t.user_id = u.id").
		GroupBy("u.id")
}

func (r *sqlxReportRepository) TodoStats(ctx context.Context) ([]domain.UserTodoStats, error) {
	q := r.userTodos().
		Column("COUNT(" + completedCase + ") AS completed_count").
		Column("COUNT(" + pendingCase + ") AS pending_count").
		OrderBy("u.id")

	var rows []struct {
		ID             uint   `db:"id"`
		FirstName      string `db:"first_name"`
		LastName       string `db:"last_name"`
		Email          string `db:"email"`
		CompletedCount int64  `db:"completed_count"`
		PendingCount   int64  `db:"pending_count"`
	}
	if err := r.selectInto(ctx, "report todo stats", &rows, q); err != nil {
		return nil, err
	}

	out := make([]domain.UserTodoStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserTodoStats(row))
	}
	return out, nil
}

type pendingRow struct {
	ID           uint          `db:"id"`
	FirstName    string        `db:"first_name"`
	LastName     string        `db:"last_name"`
	Email        string        `db:"email"`
	PendingCount sql.NullInt64 `db:"pending_count"`
}

func pendingRecords(rows []pendingRow) []domain.UserPendingCount {
	out := make([]domain.UserPendingCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserPendingCount{
			ID:           row.ID,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Email:        row.Email,
			PendingCount: row.PendingCount.Int64,
		})
	}
	return out
}

// TopPending returns the limit users with the most pending todos.
func (r *sqlxReportRepository) TopPending(ctx context.Context, limit uint64) ([]domain.UserPendingCount, error) {
	q := r.userTodos().
		Column("COUNT("+pendingCase+") AS pending_count").
		OrderBy("pending_count DESC", "u.id").
		Limit(limit)

	var rows []pendingRow
	if err := r.selectInto(ctx, "report top pending", &rows, q); err != nil {
		return nil, err
	}
	return pendingRecords(rows), nil
}

// UsersWithPending returns users whose pending todo SUM equals n. A user with
// no pending todo has a NULL sum and never matches.
func (r *sqlxReportRepository) UsersWithPending(ctx context.Context, n int64) ([]domain.UserPendingCount, error) {
	q := r.userTodos().
		Column("SUM("+pendingCase+") AS pending_count").
		Having("SUM("+pendingCase+") = ?", n).
		OrderBy("u.id")

	var rows []pendingRow
	if err := r.selectInto(ctx, "report users with pending", &rows, q); err != nil {
		return nil, err
	}
	return pendingRecords(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProjectsWithMemberName lists distinct projects having a member whose first
// name starts with prefix or whose last name ends with suffix, ignoring case.
func (r *sqlxReportRepository) ProjectsWithMemberName(ctx context.Context, prefix, suffix string) ([]domain.ProjectBrief, error) {
	q := r.sb.Select("p.name AS project_name", "p.status", "p.max_members").
		Distinct().
		From("projects AS p").
		Join("project_memberships AS pm ON pm.project_id = p.id").
		Join("users AS u ON u.id = pm.user_id").
		Where(squirrel.Or{
			squirrel.ILike{"u.first_name": likeEscaper.Replace(prefix) + "%"},
			squirrel.ILike{"u.last_name": "%" + likeEscaper.Replace(suffix)},
		}).
		OrderBy("p.name")

	var rows []struct {
		ProjectName string               `db:"project_name"`
		Status      domain.ProjectStatus `db:"status"`
		MaxMembers  uint                 `db:"max_members"`
	}
	if err := r.selectInto(ctx, "report member name match", &rows, q); err != nil {
		return nil, err
	}

	out := make([]domain.ProjectBrief, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ProjectBrief{
			ProjectName: row.ProjectName,
			Status:      row.Status.String(),
			MaxMembers:  row.MaxMembers,
		})
	}
	return out, nil
}

// ProjectWise lists every project with its members' todo sums, members ordered
// by first name. Sums over no rows stay nil.
func (r *sqlxReportRepository) ProjectWise(ctx context.Context) ([]domain.ProjectReport, error) {
	projectsQ := r.sb.Select("id", "name").From("projects").OrderBy("id")

	var projects []struct {
		ID   uint   `db:"id"`
		Name string `db:"name"`
	}
	if err := r.selectInto(ctx, "report project wise: projects", &projects, projectsQ); err != nil {
		return nil, err
	}

	membersQ := r.sb.Select("pm.project_id", "u.first_name", "u.last_name", "u.email").
		Column("SUM("+pendingCase+") AS pending_count").
		Column("SUM("+completedCase+") AS completed_count").
		From("project_memberships AS pm").
		Join("users AS u ON u.id = pm.user_id").
		LeftJoin("todos AS t ON t.user_id = u.id").
		GroupBy("pm.project_id", "u.id").
		OrderBy("pm.project_id", "u.first_name", "u.id")

	var members []struct {
		ProjectID      uint          `db:"project_id"`
		FirstName      string        `db:"first_name"`
		LastName       string        `db:"last_name"`
		Email          string        `db:"email"`
		PendingCount   sql.NullInt64 `db:"pending_count"`
		CompletedCount sql.NullInt64 `db:"completed_count"`
	}
	if err := r.selectInto(ctx, "report project wise: members", &members, membersQ); err != nil {
		return nil, err
	}

	byProject := make(map[uint][]domain.MemberTodoReport, len(projects))
	for _, m := range members {
		byProject[m.ProjectID] = append(byProject[m.ProjectID], domain.MemberTodoReport{
			FirstName:      m.FirstName,
			LastName:       m.LastName,
			Email:          m.Email,
			PendingCount:   nullableInt(m.PendingCount),
			CompletedCount: nullableInt(m.CompletedCount),
		})
	}

	out := make([]domain.ProjectReport, 0, len(projects))
	for _, p := range projects {
		report := byProject[p.ID]
		if report == nil {
			report = []domain.MemberTodoReport{}
		}
		out = append(out, domain.ProjectReport{ProjectTitle: p.Name, Report: report})
	}
	return out, nil
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func projectNamesWithStatus(status domain.ProjectStatus, alias string) squirrel.Sqlizer {
	return squirrel.Alias(
		squirrel.Expr("COALESCE(ARRAY_AGG(p.name ORDER BY p.name) FILTER (WHERE p.status = ?), '{}')", int(status)),
		alias,
	)
}

func (r *sqlxReportRepository) UserWiseProjectStatus(ctx context.Context) ([]domain.UserProjectStatus, error) {
	q := r.sb.Select("u.first_name", "u.last_name", "u.email").
		Column(projectNamesWithStatus(domain.ProjectNotStarted, "to_do_projects")).
		Column(projectNamesWithStatus(domain.ProjectInProgress, "in_progress_projects")).
		Column(projectNamesWithStatus(domain.ProjectCompleted, "completed_projects")).
		From("users AS u").
		LeftJoin("project_memberships AS pm ON pm.user_id = u.id").
		LeftJoin("projects AS p ON p.id = pm.project_id").
		GroupBy("u.id").
		OrderBy("u.id")

	var rows []struct {
		FirstName          string         `db:"first_name"`
		LastName           string         `db:"last_name"`
		Email              string         `db:"email"`
		ToDoProjects       pq.StringArray `db:"to_do_projects"`
		InProgressProjects pq.StringArray `db:"in_progress_projects"`
		CompletedProjects  pq.StringArray `db:"completed_projects"`
	}
	if err := r.selectInto(ctx, "report user wise projects", &rows, q); err != nil {
		return nil, err
	}

	out := make([]domain.UserProjectStatus, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserProjectStatus{
			FirstName:          row.FirstName,
			LastName:           row.LastName,
			Email:              row.Email,
			ToDoProjects:       nonNil(row.ToDoProjects),
			InProgressProjects: nonNil(row.InProgressProjects),
			CompletedProjects:  nonNil(row.CompletedProjects),
		})
	}
	return out, nil
}

func nonNil(names pq.StringArray) []string {
	if names == nil {
		return []string{}
	}
	return []string(names)
}
