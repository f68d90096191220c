package services

import (
	"errors"
	"fmt"
	"log/slog"

	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/utils"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so login failures do not leak which one was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles customer registration and login
type AuthService struct {
	users  UserStore
	logger *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Register creates a customer account
func (s *AuthService) Register(req *models.UserCreateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(req, hash, models.UserRoleCustomer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies credentials and returns the user
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(id int) (*models.User, error) {
	return s.users.GetByID(id)
}
