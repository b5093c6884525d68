// Package services contains the client's application services. This file
// holds the session service: it owns the bearer token from login or
// registration through expiry, logout or rejection by the backend.
package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/client/client"
	"github.com/dmitrijs2005/agentdeck/internal/common"
	"github.com/dmitrijs2005/agentdeck/internal/logging"
	"github.com/dmitrijs2005/agentdeck/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenStore is the durable cell the session writes through to.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// SessionService keeps an in-memory mirror of the durable token. The mirror
// is loaded once at construction and updated on every mutation; reads never
// go back to the store.
type SessionService struct {
	client client.Client
	tokens TokenStore
	logger logging.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
}

// NewSessionService loads the persisted token (if any) into memory.
func NewSessionService(ctx context.Context, c client.Client, tokens TokenStore, logger logging.Logger) (*SessionService, error) {
	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &SessionService{
		client: c,
		tokens: tokens,
		logger: logger.With("component", "session"),
		now:    time.Now,
		token:  token,
	}, nil
}

// Token returns the held token or "".
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Register creates an account and starts a session for it. A refusal comes
// back as *client.AuthRejectedError.
func (s *SessionService) Register(ctx context.Context, email, password string, fullName *string) (*models.Session, error) {
	resp, err := s.client.Register(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// Login authenticates and starts a session. A refusal comes back as
// *client.AuthRejectedError.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *SessionService) establish(ctx context.Context, resp *client.AuthResponse) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.SetToken(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	s.token = resp.Token

	user := resp.User
	return &models.Session{Token: resp.Token, User: &user}, nil
}

// CurrentUser resolves the held token to a user. It returns nil when no
// token is held or when the token turns out to be invalid; in the latter
// case the token is purged. It never reports an error.
func (s *SessionService) CurrentUser(ctx context.Context) *models.User {
	token := s.Token()
	if token == "" {
		return nil
	}

	if tokenExpired(token, s.now()) {
		s.logger.Info(ctx, "stored token expired, discarding")
		s.purge(ctx, token)
		return nil
	}

	user, err := s.client.Me(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; that says nothing about the token.
			return nil
		}
		s.logger.Warn(ctx, "identity probe failed, discarding token", "error", err)
		s.purge(ctx, token)
		return nil
	}
	return user
}

// purge clears token unless a newer session already replaced it.
func (s *SessionService) purge(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token {
		return
	}
	s.token = ""
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.logger.Error(ctx, "failed to clear persisted token", "error", err)
	}
}

// Logout drops the session locally. It is idempotent and makes no network
// call.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := s.tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// AuthenticatedDo sends req with the held token as a bearer credential, or
// unauthenticated when there is none. Access control is the backend's job.
func (s *SessionService) AuthenticatedDo(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.Clone(ctx)
	if token := s.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerValue(token))
	}
	return s.client.Do(req)
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}
