package domain

import "time"

// NameMaxLength bounds every human-entered name column.
const NameMaxLength = 150

// Todo is a single to-do item owned by exactly one user.
type Todo struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;index"`
	Name          string    `gorm:"size:150;not null"`
	Done          bool      `gorm:"not null;default:false"`
	DateCreated   time.Time `gorm:"autoCreateTime"`
	DateCompleted *time.Time
}

// SetDone sets the done flag and keeps DateCompleted in step with it:
// stamped with now when the todo becomes done, cleared when it is reopened.
// Marking an already completed todo done again keeps the first stamp.
func (t *Todo) SetDone(done bool, now time.Time) {
	if !done {
		t.Done = false
		t.DateCompleted = nil
		return
	}
	if !t.Done || t.DateCompleted == nil {
		completed := now
		t.DateCompleted = &completed
	}
	t.Done = true
}
