package tokenstore

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/agentdeck/internal/client/localdb"
	"github.com/dmitrijs2005/agentdeck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/agentdeck/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *metadata.SQLiteRepository) {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := metadata.NewSQLiteRepository(db)
	return New(repo), repo
}

func TestToken_RoundTripAndClear(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SetToken(ctx, "abc"))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.ClearToken(ctx))
	require.NoError(t, s.ClearToken(ctx))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestPreferences_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Nil(t, prefs)

	require.NoError(t, s.SetPreferences(ctx, map[string]any{"theme": "dark", "compact": true}))
	prefs, err = s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"theme": "dark", "compact": true}, prefs)
}

func TestPreferences_CorruptValue(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, common.PreferencesKey, []byte("{not json")))

	_, err := s.Preferences(ctx)
	require.ErrorContains(t, err, "decode cached preferences")
}

func TestClearToken_KeepsPreferences(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SetToken(ctx, "abc"))
	require.NoError(t, s.SetPreferences(ctx, map[string]any{"theme": "light"}))

	require.NoError(t, s.ClearToken(ctx))

	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", prefs["theme"])
}
