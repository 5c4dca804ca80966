package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGamesAndLobbies(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.UpsertGame(ctx, Game{Key: "gold_rush", Name: "Gold Rush", Licensed: true}))
	require.NoError(t, s.UpsertGame(ctx, Game{Key: "lucky_sevens", Name: "Lucky Sevens", Licensed: true}))
	require.NoError(t, s.UpsertGame(ctx, Game{Key: "gold_rush", Name: "Gold Rush", Licensed: false}))

	games, err := s.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "gold_rush", games[0].Key)
	assert.False(t, games[0].Licensed, "upsert should replace the license flag")

	require.NoError(t, s.AddLobbyGames(ctx, "main", "gold_rush", "lucky_sevens", "gold_rush"))
	lobbies, err := s.Lobbies(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"main": {"gold_rush", "lucky_sevens"}}, lobbies)

	assert.Error(t, s.AddLobbyGames(ctx, "vip", "missing_game"))
}

func TestGetGameNotFound(t *testing.T) {
	s := openTest(t)
	_, err := s.GetGame(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSymbolsAndSettings(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.UpsertSymbol(ctx, Symbol{GameKey: "lucky_sevens", Symbol: "s7", Name: "Seven"}))
	require.NoError(t, s.UpsertSymbol(ctx, Symbol{GameKey: "lucky_sevens", Symbol: "s7", Name: "Lucky 7"}))
	syms, err := s.ListSymbols(ctx)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "Lucky 7", syms[0].Name)

	_, ok, err := s.Setting(ctx, "collections_enabled")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.SetSetting(ctx, "collections_enabled", "false"))
	v, ok, err := s.Setting(ctx, "collections_enabled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", v)
}

func TestBreadcrumbs(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := s.AddBreadcrumb(ctx, Breadcrumb{CampaignID: "challenge_campaigns", Kind: "bad_event_index", Message: "-1", CreatedAt: base})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID.String())
	_, err = s.AddBreadcrumb(ctx, Breadcrumb{CampaignID: "challenge_campaigns", Kind: "progress_timeout", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = s.AddBreadcrumb(ctx, Breadcrumb{CampaignID: "season_challenges", Kind: "mission_not_found", CreatedAt: base.Add(2 * time.Minute)})
	require.NoError(t, err)

	all, err := s.ListBreadcrumbs(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "mission_not_found", all[0].Kind)

	robust, err := s.ListBreadcrumbs(ctx, "challenge_campaigns", 1)
	require.NoError(t, err)
	require.Len(t, robust, 1)
	assert.Equal(t, "progress_timeout", robust[0].Kind)
}

func TestBreadcrumbSink(t *testing.T) {
	s := openTest(t)
	BreadcrumbSink{Store: s}.Record("eue_challenges", "reset_out_of_range", "event 9")

	got, err := s.ListBreadcrumbs(context.Background(), "eue_challenges", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "reset_out_of_range", got[0].Kind)
	assert.Equal(t, "event 9", got[0].Message)
}
