package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xdott/contact-dashboard-api/internal/auth"
	"github.com/xdott/contact-dashboard-api/internal/entity"
	"github.com/xdott/contact-dashboard-api/internal/repository"
)

var (
	// ErrEmailAlreadyExists is returned when registering an email that is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUsernameAlreadyExists is returned when the owner handle is taken.
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	users repository.UsersRepository
	jwt   *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

// Login validates credentials and returns a JWT. The last-login stamp is
// best effort and never fails the login itself.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("email and password must not be empty")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", errors.New("invalid credentials")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		log.Printf("record login failed user=%s err=%v", user.Email, err)
	}

	return s.jwt.GenerateToken(user)
}

// Register creates a self-service member account and returns a ready-to-use
// token. A blank username defaults to the email's local part, the handle the
// dashboard matches against Contact.OwnerUsername.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("email and password must not be empty")
	}
	if username == "" {
		username = DeriveUsername(email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, username, string(hashed), entity.RoleMember)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailDuplicate):
			return "", ErrEmailAlreadyExists
		case errors.Is(err, repository.ErrUsernameDuplicate):
			return "", ErrUsernameAlreadyExists
		}
		return "", err
	}

	return s.jwt.GenerateToken(user)
}

// DeriveUsername produces the default owner handle for an email address.
func DeriveUsername(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return strings.ToLower(local)
}
