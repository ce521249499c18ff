package domain

import (
	"strings"
	"time"
)

// User is an account that owns todos and joins projects.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	FirstName    string    `gorm:"size:150;not null;default:''"`
	LastName     string    `gorm:"size:150;not null;default:''"`
	Email        string    `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	IsStaff      bool      `gorm:"not null;default:false"`
	IsSuperuser  bool      `gorm:"not null;default:false"`
	DateJoined   time.Time `gorm:"autoCreateTime"`
	LastLogin    *time.Time

	// Relationships
	Todos       []Todo              `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Memberships []ProjectMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// FullName joins first and last name, trimming the gap when either is empty.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lower-cases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
