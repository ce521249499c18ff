package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Tomlord1122/taskhub/internal/domain"
)

// UserRepository defines the data operations on user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create inserts the user. A duplicate email surfaces as domain.ErrConflict.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate("find user by id", err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, translate("find user by email", err)
	}
	return &user, nil
}

func (r *gormUserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("last_login", at)
	if result.Error != nil {
		return translate("update last login", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("update last login", gorm.ErrRecordNotFound)
	}
	return nil
}
