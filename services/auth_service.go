package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"canteen-service/models"
	"canteen-service/repository"
)

const (
	minPasswordLength = 6
	// bcrypt only hashes the first 72 bytes and refuses longer input.
	maxPasswordBytes = 72
)

type AuthService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a non-admin account.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.User, error) {
	return s.create(ctx, username, password, false)
}

func (s *AuthService) create(ctx context.Context, username, password string, admin bool) (models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return models.User{}, invalidf("username and password are required")
	}
	if len(password) < minPasswordLength {
		return models.User{}, invalidf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return models.User{}, invalidf("password must be at most %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: hash password: %v", ErrStorageFault, err)
	}

	user := models.User{Username: username, PasswordHash: string(hash), IsAdmin: admin}
	id, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return models.User{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}
	if err != nil {
		return models.User{}, storeErr(err, "user")
	}
	user.ID = id
	return user, nil
}

// Login checks the password against the stored bcrypt hash. The username
// must match exactly, including case.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.Session, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, storeErr(err, "user")
	}
	if user.Username != username {
		return models.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	return models.Session{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// EnsureAdmin seeds an admin account unless one already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	exists, err := s.users.HasAdmin(ctx)
	if err != nil {
		return storeErr(err, "users")
	}
	if exists {
		return nil
	}
	if _, err := s.create(ctx, username, password, true); err != nil {
		return err
	}
	log.WithField("username", username).Info("Seeded admin account")
	return nil
}
