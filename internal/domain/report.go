package domain

import "time"

// Todo display statuses used in reports.
const (
	TodoStatusDone    = "Done"
	TodoStatusPending = "To do"
)

// ReportTimeLayout renders timestamps like "05:30 PM, 13 Dec, 2021".
const ReportTimeLayout = "03:04 PM, 02 Jan, 2006"

type UserRecord struct {
	ID        uint   `json:"id" yaml:"id"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Email     string `json:"email" yaml:"email"`
}

type Creator struct {
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Email     string `json:"email" yaml:"email"`
}

type TodoWithCreator struct {
	ID        uint    `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Status    string  `json:"status" yaml:"status"`
	CreatedAt string  `json:"created_at" yaml:"created_at"`
	Creator   Creator `json:"creator" yaml:"creator"`
}

// TodoStatusLabel maps the done flag onto its display status.
func TodoStatusLabel(done bool) string {
	if done {
		return TodoStatusDone
	}
	return TodoStatusPending
}

// FormatReportTime formats t with ReportTimeLayout.
func FormatReportTime(t time.Time) string {
	return t.Format(ReportTimeLayout)
}

type ProjectDetail struct {
	ID                  uint   `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Status              string `json:"status" yaml:"status"`
	ExistingMemberCount int    `json:"existing_member_count" yaml:"existing_member_count"`
	MaxMembers          uint   `json:"max_members" yaml:"max_members"`
}

type UserTodoStats struct {
	ID             uint   `json:"id" yaml:"id"`
	FirstName      string `json:"first_name" yaml:"first_name"`
	LastName       string `json:"last_name" yaml:"last_name"`
	Email          string `json:"email" yaml:"email"`
	CompletedCount int64  `json:"completed_count" yaml:"completed_count"`
	PendingCount   int64  `json:"pending_count" yaml:"pending_count"`
}

type UserPendingCount struct {
	ID           uint   `json:"id" yaml:"id"`
	FirstName    string `json:"first_name" yaml:"first_name"`
	LastName     string `json:"last_name" yaml:"last_name"`
	Email        string `json:"email" yaml:"email"`
	PendingCount int64  `json:"pending_count" yaml:"pending_count"`
}

type ProjectBrief struct {
	ProjectName string `json:"project_name" yaml:"project_name"`
	Status      string `json:"status" yaml:"status"`
	MaxMembers  uint   `json:"max_members" yaml:"max_members"`
}

// MemberTodoReport counts a member's todos. Nil counts mean the member has
// no todo in that state, following SQL SUM over an empty set.
type MemberTodoReport struct {
	FirstName      string `json:"first_name" yaml:"first_name"`
	LastName       string `json:"last_name" yaml:"last_name"`
	Email          string `json:"email" yaml:"email"`
	PendingCount   *int64 `json:"pending_count" yaml:"pending_count"`
	CompletedCount *int64 `json:"completed_count" yaml:"completed_count"`
}

type ProjectReport struct {
	ProjectTitle string             `json:"project_title" yaml:"project_title"`
	Report       []MemberTodoReport `json:"report" yaml:"report"`
}

type UserProjectStatus struct {
	FirstName          string   `json:"first_name" yaml:"first_name"`
	LastName           string   `json:"last_name" yaml:"last_name"`
	Email              string   `json:"email" yaml:"email"`
	ToDoProjects       []string `json:"to_do_projects" yaml:"to_do_projects"`
	InProgressProjects []string `json:"in_progress_projects" yaml:"in_progress_projects"`
	CompletedProjects  []string `json:"completed_projects" yaml:"completed_projects"`
}
