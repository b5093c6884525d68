// Package tokenstore is the client's durable session cell: one slot for the
// bearer token and a sibling slot for preferences cached while no remote
// store is configured. Absence of the token slot means "no session".
package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/agentdeck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/agentdeck/internal/common"
)

type Store struct {
	repo metadata.Repository
}

func New(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

// Token returns the persisted token or "" when none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.TokenKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.TokenKey, []byte(token))
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.repo.Delete(ctx, common.TokenKey)
}

// Preferences returns the locally cached preferences, or nil when none were
// written.
func (s *Store) Preferences(ctx context.Context) (map[string]any, error) {
	v, err := s.repo.Get(ctx, common.PreferencesKey)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	var prefs map[string]any
	if err := json.Unmarshal(v, &prefs); err != nil {
		return nil, fmt.Errorf("decode cached preferences: %w", err)
	}
	return prefs, nil
}

func (s *Store) SetPreferences(ctx context.Context, prefs map[string]any) error {
	b, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return s.repo.Set(ctx, common.PreferencesKey, b)
}
