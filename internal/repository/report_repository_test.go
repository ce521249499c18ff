package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/taskhub/internal/domain"
)

func newReportRepo(t *testing.T) (ReportRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSqlxReportRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestReportUsers(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`SELECT id, first_name, last_name, email FROM users ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email"}).
			AddRow(1, "John", "Doe", "john@example.com"))

	users, err := repo.Users(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.UserRecord{{ID: 1, FirstName: "John", LastName: "Doe", Email: "john@example.com"}}, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportTodosWithCreator(t *testing.T) {
	repo, mock := newReportRepo(t)
	created := time.Date(2021, time.December, 13, 17, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT t.id, t.name, t.done, t.date_created, .* FROM todos AS t JOIN users AS u`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "done", "date_created", "first_name", "last_name", "email"}).
			AddRow(1, "Buy groceries", true, created, "John", "Doe", "john@example.com").
			AddRow(2, "Walk dog", false, created, "Jane", "Roe", "jane@example.com"))

	todos, err := repo.TodosWithCreator(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "Done", todos[0].Status)
	assert.Equal(t, "To do", todos[1].Status)
	assert.Equal(t, "05:30 PM, 13 Dec, 2021", todos[0].CreatedAt)
	assert.Equal(t, domain.Creator{FirstName: "Jane", LastName: "Roe", Email: "jane@example.com"}, todos[1].Creator)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportProjectDetails(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`SELECT .*COUNT\(pm.id\) AS existing_member_count FROM projects AS p LEFT JOIN project_memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "max_members", "existing_member_count"}).
			AddRow(1, "Project A", 1, 4, 2))

	projects, err := repo.ProjectDetails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProjectDetail{{
		ID: 1, Name: "Project A", Status: "In progress", ExistingMemberCount: 2, MaxMembers: 4,
	}}, projects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportTodoStats(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`COUNT\(CASE WHEN t.done THEN 1 END\) AS completed_count, COUNT\(CASE WHEN NOT t.done THEN 1 END\) AS pending_count FROM users AS u LEFT JOIN todos AS t`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "completed_count", "pending_count"}).
			AddRow(1, "John", "Doe", "john@example.com", 1, 2).
			AddRow(2, "Jane", "Roe", "jane@example.com", 0, 0))

	stats, err := repo.TodoStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.EqualValues(t, 2, stats[0].PendingCount)
	assert.EqualValues(t, 0, stats[1].CompletedCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportTopPending(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`ORDER BY pending_count DESC, u.id LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "pending_count"}).
			AddRow(3, "Uma", "Ray", "uma@example.com", 7))

	users, err := repo.TopPending(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.EqualValues(t, 7, users[0].PendingCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportUsersWithPending(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`HAVING SUM\(CASE WHEN NOT t.done THEN 1 END\) = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "pending_count"}).
			AddRow(1, "John", "Doe", "john@example.com", 2))

	users, err := repo.UsersWithPending(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "john@example.com", users[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportProjectsWithMemberName(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT p.name AS project_name, p.status, p.max_members .* WHERE \(u.first_name ILIKE \$1 OR u.last_name ILIKE \$2\)`).
		WithArgs(`U%`, `%u\_`).
		WillReturnRows(sqlmock.NewRows([]string{"project_name", "status", "max_members"}).
			AddRow("Project A", 0, 3))

	projects, err := repo.ProjectsWithMemberName(context.Background(), "U", "u_")
	require.NoError(t, err)
	assert.Equal(t, []domain.ProjectBrief{{ProjectName: "Project A", Status: "To be started", MaxMembers: 3}}, projects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportProjectWise(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`SELECT id, name FROM projects ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Project A").
			AddRow(2, "Empty"))
	mock.ExpectQuery(`FROM project_memberships AS pm JOIN users AS u .* GROUP BY pm.project_id, u.id ORDER BY pm.project_id, u.first_name`).
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "first_name", "last_name", "email", "pending_count", "completed_count"}).
			AddRow(1, "John", "Doe", "john@example.com", nil, 5).
			AddRow(1, "Utkarsh", "Goel", "utkarsh@example.com", 1, 1))

	reports, err := repo.ProjectWise(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "Project A", reports[0].ProjectTitle)
	require.Len(t, reports[0].Report, 2)
	assert.Nil(t, reports[0].Report[0].PendingCount)
	require.NotNil(t, reports[0].Report[0].CompletedCount)
	assert.EqualValues(t, 5, *reports[0].Report[0].CompletedCount)
	assert.Equal(t, "Utkarsh", reports[0].Report[1].FirstName)

	assert.Equal(t, "Empty", reports[1].ProjectTitle)
	assert.NotNil(t, reports[1].Report)
	assert.Empty(t, reports[1].Report)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportUserWiseProjectStatus(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`FILTER \(WHERE p.status = \$1\).* AS to_do_projects.*FILTER \(WHERE p.status = \$2\).* AS in_progress_projects.*FILTER \(WHERE p.status = \$3\).* AS completed_projects`).
		WithArgs(0, 1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name", "email", "to_do_projects", "in_progress_projects", "completed_projects"}).
			AddRow("John", "Doe", "john@example.com", "{\"Project A\",\"Project B\"}", "{}", "{Project C}"))

	rows, err := repo.UserWiseProjectStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Project A", "Project B"}, rows[0].ToDoProjects)
	assert.Equal(t, []string{}, rows[0].InProgressProjects)
	assert.Equal(t, []string{"Project C"}, rows[0].CompletedProjects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportWrapsErrors(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectQuery(`FROM users`).WillReturnError(assert.AnError)

	_, err := repo.Users(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "report users")
}
