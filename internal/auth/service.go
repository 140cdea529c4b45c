package auth

import (
	"context"
)

// UserStore defines the credential operations the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// Service handles signup and login, exchanging credentials for bearer tokens.
type Service struct {
	users  UserStore
	tokens *Tokens
}

// NewService constructs an auth Service.
func NewService(users UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

// Signup registers a new user.
func (s *Service) Signup(ctx context.Context, username, password string) error {
	return s.users.CreateUser(ctx, username, password)
}

// Login validates credentials and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(identity)
}
