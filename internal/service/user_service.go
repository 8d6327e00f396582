package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"online-library/internal/domain"
	"online-library/pkg/utils"
)

type TokenIssuer interface {
	Issue(login string) (string, error)
}

type UserService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, tokens TokenIssuer, log *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

// Register creates a USER account.
func (s *UserService) Register(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if err := validation.Validate(login, validation.RuneLength(domain.MinLoginLen, domain.MaxNameLen)); err != nil {
		return nil, validation.Errors{"login": err}
	}
	return s.create(ctx, login, password, domain.RoleUser)
}

// Authenticate checks the credentials and issues a bearer token.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (string, error) {
	u, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown login", domain.ErrBadCredentials)
	}
	if err != nil {
		return "", err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return "", fmt.Errorf("%w: password mismatch", domain.ErrBadCredentials)
	}
	tok, err := s.tokens.Issue(u.Login)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

func (s *UserService) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return s.users.FindByLogin(ctx, login)
}

// Seed creates the account unless the login already exists. Safe to call
// concurrently: the login unique index decides the winner.
func (s *UserService) Seed(ctx context.Context, login, password string, role domain.Role) (bool, error) {
	if !role.Valid() {
		return false, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	_, err := s.create(ctx, strings.TrimSpace(login), password, role)
	if errors.Is(err, domain.ErrLoginTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) create(ctx context.Context, login, password string, role domain.Role) (*domain.User, error) {
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", domain.ErrInvalidInput)
	}
	taken, err := s.users.ExistsByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", domain.ErrLoginTaken, login)
	}
	hash, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password is too long", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Login: login, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("login", u.Login), zap.String("role", string(u.Role)))
	return u, nil
}
