package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidRole is returned for roles outside student/staff/admin.
	ErrInvalidRole = errors.New("invalid role")
)

// Registration carries the fields needed to create a directory user.
type Registration struct {
	Username string
	Password string
	Name     string
	Role     store.Role
}

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user with hashed password and returns a JWT token.
func (s *Service) Register(ctx context.Context, reg Registration) (string, *store.User, error) {
	username := strings.TrimSpace(reg.Username)
	if len(username) < 3 || len(username) > 32 {
		return "", nil, ErrInvalidUsername
	}
	if len(reg.Password) < 6 {
		return "", nil, ErrInvalidPassword
	}

	role := reg.Role
	switch role {
	case "":
		role = store.RoleStudent
	case store.RoleStudent, store.RoleStaff, store.RoleAdmin:
	default:
		return "", nil, ErrInvalidRole
	}

	name := strings.TrimSpace(reg.Name)
	if name == "" {
		name = username
	}

	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return "", nil, ErrUserExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", nil, fmt.Errorf("check username: %w", err)
	}

	hashedPassword, err := HashPassword(reg.Password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.store.CreateUser(ctx, &store.User{
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
