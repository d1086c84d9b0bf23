package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// UserService handles registration, login and account lookups
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account. The password must be typed twice.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, model.ErrUsernameRequired
	}
	if utf8.RuneCountInString(username) > model.MaxUsernameLength {
		return nil, model.ErrUsernameTooLong
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, model.ErrPasswordRequired
	}
	if req.Password != req.PasswordConfirm {
		return nil, model.ErrPasswordMismatch
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		PasswordHashed: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if err == model.ErrUsernameExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[UserService] Registered user=%d username=%s", user.ID, user.Username)
	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// requireAdmin returns ErrNotAdmin unless userID belongs to an admin.
func requireAdmin(ctx context.Context, users repository.UserRepository, userID int64) error {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return model.ErrNotAdmin
	}
	return nil
}
