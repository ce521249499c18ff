package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/taskhub/internal/domain"
)

// TodoRepository defines todo data operations. Every read and write is scoped
// to the owning user; another user's todo behaves as if it did not exist.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, ownerID, id uint) (*domain.Todo, error)
	List(ctx context.Context, ownerID uint, offset, limit int) ([]domain.Todo, int64, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, ownerID, id uint) error
}

type gormTodoRepository struct {
	db *gorm.DB
}

func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return translate("create todo", r.db.WithContext(ctx).Create(todo).Error)
}

func (r *gormTodoRepository) FindByID(ctx context.Context, ownerID, id uint) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).First(&todo, id).Error
	if err != nil {
		return nil, translate("find todo", err)
	}
	return &todo, nil
}

// List returns one page of the owner's todos, oldest first, plus the owner's total count.
func (r *gormTodoRepository) List(ctx context.Context, ownerID uint, offset, limit int) ([]domain.Todo, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("user_id = ?", ownerID).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate("count todos", err)
	}

	var todos []domain.Todo
	err := db.Order("id").Offset(offset).Limit(limit).Find(&todos).Error
	if err != nil {
		return nil, 0, translate("list todos", err)
	}
	return todos, total, nil
}

// Update saves every column of the todo.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	return translate("update todo", r.db.WithContext(ctx).Save(todo).Error)
}

func (r *gormTodoRepository) Delete(ctx context.Context, ownerID, id uint) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&domain.Todo{}, id)
	if result.Error != nil {
		return translate("delete todo", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete todo", gorm.ErrRecordNotFound)
	}
	return nil
}
