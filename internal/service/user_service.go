package service

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 12

// UserRepository is the user persistence UserService needs
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService handles console accounts
type UserService struct {
	repo     UserRepository
	hashCost int
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo:     repo,
		hashCost: passwordHashCost,
		logger:   util.GetLogger(),
	}
}

// CreateUserRequest represents a request to add a user
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(3, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
		validation.Field(&r.Role, validation.Length(0, 50)),
		validation.Field(&r.Status, validation.Length(0, 20)),
	)
}

// UpdateUserRequest changes a user. Empty fields keep their stored value; a
// non-empty password is re-hashed.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 100)),
		validation.Field(&r.Email, is.Email.Error("invalid email format"), validation.Length(0, 255)),
		validation.Field(&r.Password, validation.Length(8, 128).Error("password must be 8-128 characters")),
		validation.Field(&r.Role, validation.Length(0, 50)),
		validation.Field(&r.Status, validation.Length(0, 20)),
	)
}

// ListUsers returns every user
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.ListUsers")
	defer span.End()

	return s.repo.ListUsers(ctx)
}

// CreateUser hashes the password and stores the user. A duplicate email
// fails with ErrConflict.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.CreateUser")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         orDefault(req.Role, models.UserRoleStaff),
		Status:       orDefault(req.Status, models.UserStatusActive),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	util.EntitiesCreatedTotal.WithLabelValues("user").Inc()
	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// UpdateUser merges the request into the stored user
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateUser")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	if req.Password != "" {
		if user.PasswordHash, err = s.hashPassword(req.Password); err != nil {
			return nil, err
		}
		s.logger.Info("User password changed", zap.Int64("user_id", id))
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "UserService.DeleteUser")
	defer span.End()

	return s.repo.DeleteUser(ctx, id)
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
