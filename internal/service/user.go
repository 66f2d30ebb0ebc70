package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xdott/contact-dashboard-api/internal/dto"
	"github.com/xdott/contact-dashboard-api/internal/entity"
	"github.com/xdott/contact-dashboard-api/internal/repository"
)

// UserService encapsulates administrative operations on dashboard accounts.
type UserService struct {
	repo repository.UsersRepository
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

// ListUsers returns all accounts as DTOs.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, userResponse(&u))
	}
	return responses, nil
}

// CreateUser creates a new account with the supplied role.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.TrimSpace(req.Role)

	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}
	if req.Username == "" {
		req.Username = DeriveUsername(req.Email)
	}
	if req.Role == "" {
		req.Role = entity.RoleMember
	}
	if !entity.KnownRole(req.Role) {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, req.Email, req.Username, string(hashed), req.Role)
	if err != nil {
		return nil, err
	}

	resp := userResponse(user)
	return &resp, nil
}

// UpdateUser mutates selected account fields.
func (s *UserService) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid user id")
	}

	var emailPtr *string
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		emailPtr = &trimmed
		if *emailPtr == "" {
			return nil, errors.New("email cannot be empty")
		}
	}

	var usernamePtr *string
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		usernamePtr = &trimmed
		if *usernamePtr == "" {
			return nil, errors.New("username cannot be empty")
		}
	}

	var rolePtr *string
	if req.Role != nil {
		trimmed := strings.TrimSpace(*req.Role)
		rolePtr = &trimmed
		if !entity.KnownRole(*rolePtr) {
			return nil, fmt.Errorf("unknown role %q", *rolePtr)
		}
	}

	var passwordPtr *string
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, errors.New("password cannot be empty")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		passwordPtr = &pwd
	}

	user, err := s.repo.Update(ctx, userID, emailPtr, usernamePtr, passwordPtr, rolePtr)
	if err != nil {
		return nil, err
	}

	resp := userResponse(user)
	return &resp, nil
}

// DeleteUser removes an account by id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return errors.New("invalid user id")
	}
	return s.repo.Delete(ctx, userID)
}

func userResponse(u *entity.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
	if u.LastLoginAt != nil {
		resp.LastLoginAt = u.LastLoginAt.UTC().Format(time.RFC3339)
	}
	return resp
}
