package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"homestock/internal/domain"
	"homestock/internal/repos"
)

var ErrBadCreds = domain.Unauthorized("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// Register creates an account. Emails are unique regardless of case.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, domain.Conflict("email %s is already registered", email)
	} else if !repos.IsNoRows(err) {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.Users.Create(ctx, email, name, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &domain.User{ID: id, Email: email, Name: name}, nil
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}
