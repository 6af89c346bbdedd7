// Package identity fronts sign-up, sign-in and session refresh for the HTTP
// layer. The gate depends only on the Provider interface so a flaky or
// unreachable backing store can be simulated and must degrade to
// "unauthenticated", never to a grant.
package identity

import (
	"context"
	"errors"
	"time"

	"pollboard/internal/domain/user"
	"pollboard/internal/platform/apperr"
	"pollboard/internal/platform/session"
)

type Session struct {
	Token     string
	ExpiresAt time.Time
}

type Provider interface {
	SignUp(ctx context.Context, email, displayName, password string) (*user.User, *Session, error)
	SignIn(ctx context.Context, email, password string) (*user.User, *Session, error)
	// Refresh validates a session token, resolves the current user and
	// re-issues the token with a fresh expiry.
	Refresh(ctx context.Context, token string) (*user.User, *Session, error)
}

type Service struct {
	users  *user.Service
	tokens *session.Manager
}

func NewService(users *user.Service, tokens *session.Manager) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) SignUp(ctx context.Context, email, displayName, password string) (*user.User, *Session, error) {
	u, err := s.users.SignUp(ctx, email, displayName, password)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.issue(u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*user.User, *Session, error) {
	u, err := s.users.SignIn(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.issue(u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

func (s *Service) Refresh(ctx context.Context, token string) (*user.User, *Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, apperr.Unauthorized("invalid_session", "invalid or expired session", err)
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, apperr.Unauthorized("invalid_session", "session user no longer exists", err)
		}
		return nil, nil, apperr.Unavailable("identity_unavailable", "identity lookup failed", err)
	}

	sess, err := s.issue(u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

func (s *Service) issue(userID string) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}
