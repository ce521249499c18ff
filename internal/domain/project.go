package domain

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus int

const (
	ProjectNotStarted ProjectStatus = iota
	ProjectInProgress
	ProjectCompleted
)

// String returns the display label for the status.
func (s ProjectStatus) String() string {
	switch s {
	case ProjectNotStarted:
		return "To be started"
	case ProjectInProgress:
		return "In progress"
	case ProjectCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	return s >= ProjectNotStarted && s <= ProjectCompleted
}

// Project groups a bounded set of members.
type Project struct {
	ID         uint          `gorm:"primaryKey"`
	Name       string        `gorm:"size:150;not null"`
	MaxMembers uint          `gorm:"not null;check:max_members > 0"`
	Status     ProjectStatus `gorm:"not null;default:0"`

	// Relationships
	Memberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// ProjectMembership links one user to one project. The pair is unique.
type ProjectMembership struct {
	ID        uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_member"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_project_member;index"`
}

// ProjectSummary is a project as listed to one of its members.
type ProjectSummary struct {
	ID                  uint
	Name                string
	Status              ProjectStatus
	MaxMembers          uint
	ExistingMemberCount int
}

// ProjectSnapshot is the state of a project read once per membership call:
// identity, capacity, current member count and current member ids.
type ProjectSnapshot struct {
	ID              uint
	MaxMembers      int
	ExistingMembers int
	Members         map[uint]struct{}
}

// NewProjectSnapshot builds a snapshot from the member ids returned by the store.
func NewProjectSnapshot(id uint, maxMembers, existing int, members []uint) ProjectSnapshot {
	set := make(map[uint]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return ProjectSnapshot{
		ID:              id,
		MaxMembers:      maxMembers,
		ExistingMembers: existing,
		Members:         set,
	}
}

// HasMember reports whether userID currently belongs to the project.
func (s ProjectSnapshot) HasMember(userID uint) bool {
	_, ok := s.Members[userID]
	return ok
}

// RemainingCapacity is how many more members the project can take, never negative.
func (s ProjectSnapshot) RemainingCapacity() int {
	if s.ExistingMembers >= s.MaxMembers {
		return 0
	}
	return s.MaxMembers - s.ExistingMembers
}
