package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/auth"
	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/repository"
	"github.com/Tomlord1122/taskhub/internal/validation"
)

const (
	msgPasswordMismatch = "Password and confirm password do not match"
	msgEmailTaken       = "user with this email already exists."
	msgPasswordTooLong  = "Ensure this field has no more than 72 characters."
)

// RegisterRequest holds the data needed to create an account.
type RegisterRequest struct {
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// RegisterResponse is the created account plus an access token.
type RegisterResponse struct {
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
	Token      string    `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// SuperuserRequest describes an administrator account created from the CLI.
type SuperuserRequest struct {
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
}

// UserService handles accounts and credentials.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// Authenticate resolves a bearer token to the user it was issued for.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	CreateSuperuser(ctx context.Context, req SuperuserRequest) (*domain.User, error)
}

type userService struct {
	repo   repository.UserRepository
	tokens *auth.TokenManager
	logger *zap.Logger
	now    func() time.Time
}

func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		tokens: tokens,
		logger: logger.Named("users"),
		now:    time.Now,
	}
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, domain.NewValidationError("password", msgPasswordMismatch)
	}

	user, err := s.create(ctx, req.FirstName, req.LastName, req.Email, req.Password, false)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("issue token", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	return &RegisterResponse{
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		DateJoined: user.DateJoined,
		Token:      token,
	}, nil
}

func (s *userService) CreateSuperuser(ctx context.Context, req SuperuserRequest) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req.FirstName, req.LastName, req.Email, req.Password, true)
}

func (s *userService) create(ctx context.Context, first, last, email, password string, admin bool) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if auth.IsPasswordTooLong(err) {
			return nil, domain.NewValidationError("password", msgPasswordTooLong)
		}
		return nil, err
	}

	user := &domain.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      admin,
		IsSuperuser:  admin,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewValidationError("email", msgEmailTaken)
		}
		s.logger.Error("create user", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created", zap.Uint("user_id", user.ID), zap.Bool("staff", admin))
	return user, nil
}

// Login checks credentials and returns a fresh token. Unknown email and wrong
// password fail the same way.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("failed login", zap.Uint("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return &LoginResponse{AuthToken: token}, nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}
