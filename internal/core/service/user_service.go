package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

// bcrypt rejects longer inputs.
const maxPasswordBytes = 72

type UserService struct {
	db     port.DatabaseRepository
	hasher port.PasswordHasher
	tokens port.TokenIssuer
}

func NewUserService(db port.DatabaseRepository, hasher port.PasswordHasher, tokens port.TokenIssuer) *UserService {
	return &UserService{db: db, hasher: hasher, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordBytes)
	}

	existing, err := s.db.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.db.Users().CreateUser(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, port.ErrDuplicate) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login returns a bearer token for valid credentials.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.db.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *UserService) Authenticate(token string) (domain.Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return id, nil
}
