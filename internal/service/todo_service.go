package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/repository"
	"github.com/Tomlord1122/taskhub/internal/validation"
)

// ErrInvalidPage is returned for a page number below 1 or past the last page.
var ErrInvalidPage = fmt.Errorf("invalid page: %w", domain.ErrNotFound)

// CreateTodoRequest holds the data needed to create a new todo.
type CreateTodoRequest struct {
	Todo string `json:"todo" validate:"required,max=150"`
}

// UpdateTodoRequest holds the data for updating an existing todo.
// Pointers distinguish an omitted field from its zero value.
type UpdateTodoRequest struct {
	Todo *string `json:"todo" validate:"omitnil,max=150"`
	Done *bool   `json:"done"`
}

// TodoResponse is the representation of a Todo returned to its owner.
type TodoResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Done        bool      `json:"done"`
	DateCreated time.Time `json:"date_created"`
}

// TodoPage is one page of the owner's todos.
type TodoPage struct {
	Count    int64          `json:"count"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Results  []TodoResponse `json:"results"`
}

// TodoService manages the requester's own todos.
type TodoService interface {
	CreateTodo(ctx context.Context, ownerID uint, req CreateTodoRequest) (*TodoResponse, error)
	GetTodoByID(ctx context.Context, ownerID, id uint) (*TodoResponse, error)
	// ListTodos returns the 1-based page of the owner's todos.
	ListTodos(ctx context.Context, ownerID uint, page int) (*TodoPage, error)
	// UpdateTodo applies req. With partial false, both fields are required.
	UpdateTodo(ctx context.Context, ownerID, id uint, req UpdateTodoRequest, partial bool) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, ownerID, id uint) error
}

type todoService struct {
	repo     repository.TodoRepository
	pageSize int
	logger   *zap.Logger
	now      func() time.Time
}

func NewTodoService(repo repository.TodoRepository, pageSize int, logger *zap.Logger) TodoService {
	return &todoService{
		repo:     repo,
		pageSize: pageSize,
		logger:   logger.Named("todos"),
		now:      time.Now,
	}
}

func toTodoResponse(t *domain.Todo) *TodoResponse {
	return &TodoResponse{
		ID:          t.ID,
		Name:        t.Name,
		Done:        t.Done,
		DateCreated: t.DateCreated,
	}
}

func (s *todoService) CreateTodo(ctx context.Context, ownerID uint, req CreateTodoRequest) (*TodoResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		UserID: ownerID,
		Name:   req.Todo,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		s.logger.Error("create todo", zap.Uint("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return toTodoResponse(todo), nil
}

func (s *todoService) GetTodoByID(ctx context.Context, ownerID, id uint) (*TodoResponse, error) {
	todo, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toTodoResponse(todo), nil
}

func (s *todoService) ListTodos(ctx context.Context, ownerID uint, page int) (*TodoPage, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	todos, total, err := s.repo.List(ctx, ownerID, (page-1)*s.pageSize, s.pageSize)
	if err != nil {
		s.logger.Error("list todos", zap.Uint("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	if page > 1 && len(todos) == 0 {
		return nil, ErrInvalidPage
	}

	results := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		results = append(results, *toTodoResponse(&todos[i]))
	}
	return &TodoPage{
		Count:    total,
		Page:     page,
		PageSize: s.pageSize,
		Results:  results,
	}, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, ownerID, id uint, req UpdateTodoRequest, partial bool) (*TodoResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !partial {
		verr := &domain.ValidationError{}
		if req.Todo == nil {
			verr.Add("todo", "This field is required.")
		}
		if req.Done == nil {
			verr.Add("done", "This field is required.")
		}
		if !verr.Empty() {
			return nil, verr
		}
	}
	if req.Todo != nil && *req.Todo == "" {
		return nil, domain.NewValidationError("todo", "This field may not be blank.")
	}

	todo, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Todo != nil {
		todo.Name = *req.Todo
	}
	if req.Done != nil {
		todo.SetDone(*req.Done, s.now())
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		s.logger.Error("update todo", zap.Uint("todo_id", id), zap.Error(err))
		return nil, err
	}
	return toTodoResponse(todo), nil
}

func (s *todoService) DeleteTodo(ctx context.Context, ownerID, id uint) error {
	return s.repo.Delete(ctx, ownerID, id)
}
