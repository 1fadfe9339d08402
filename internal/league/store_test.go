package league_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sundaysquad/sundaysquad/internal/database"
	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/sport"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (league.LeagueStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := league.New(db)
	return store, db, dbTeardown
}

func TestAddAndGetPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("player1", "Player One")
	store.AddPlayer("player2", "Player Two")

	assert.True(t, store.IsKnownPlayer("player1"))
	assert.False(t, store.IsKnownPlayer("player3"))

	allPlayers, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Len(t, allPlayers, 2)
}

func TestUpsertPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	err := store.UpsertPlayers([]league.PlayerInfo{
		{ID: "p1", Name: "Player One"},
		{ID: "p2", Name: "Player Two"},
	})
	require.NoError(t, err)

	// Upserting again with a new name should update, not duplicate.
	err = store.UpsertPlayers([]league.PlayerInfo{{ID: "p1", Name: "Renamed"}})
	require.NoError(t, err)

	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	require.Len(t, players, 2)

	byID := make(map[string]league.PlayerInfo)
	for _, p := range players {
		byID[p.ID] = p
	}
	assert.Equal(t, "Renamed", byID["p1"].Name)
}

func TestCreateAndGetGame(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]league.PlayerInfo{
		{ID: "p1", Name: "Player One"},
		{ID: "p2", Name: "Player Two"},
	}))

	game := &league.Game{
		ID:          "g1",
		Sport:       sport.Football,
		ScheduledAt: time.Now().Unix(),
		Venue:       "Valby Park",
		OrganizerID: "p1",
		CreatedAt:   time.Now().Unix(),
		Roster:      []string{"p1", "p2"},
	}
	require.NoError(t, store.CreateGame(game))

	got, err := store.GetGame("g1")
	require.NoError(t, err)
	assert.Equal(t, sport.Football, got.Sport)
	assert.Equal(t, "Valby Park", got.Venue)
	assert.Equal(t, []string{"p1", "p2"}, got.Roster)
	assert.False(t, got.Completed())

	_, err = store.GetGame("nope")
	assert.ErrorIs(t, err, league.ErrGameNotFound)
}

func TestGetAllGames(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]league.PlayerInfo{{ID: "p1", Name: "Player One"}}))

	for i, id := range []string{"g1", "g2"} {
		require.NoError(t, store.CreateGame(&league.Game{
			ID:          id,
			Sport:       sport.Padel,
			ScheduledAt: int64(1000 + i),
			CreatedAt:   int64(i),
			Roster:      []string{"p1"},
		}))
	}

	games, err := store.GetAllGames()
	require.NoError(t, err)
	require.Len(t, games, 2)
	// Most recent first.
	assert.Equal(t, "g2", games[0].ID)
	assert.Equal(t, []string{"p1"}, games[0].Roster)
}

func TestApplyFinalizedResult(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]league.PlayerInfo{
		{ID: "p1", Name: "Player One"},
		{ID: "p2", Name: "Player Two"},
		{ID: "p3", Name: "Player Three"},
	}))

	res := league.FinalizedResult{
		GameID:     "g1",
		Played:     []string{"p1", "p2"},
		Missed:     []string{"p3"},
		ApprovedBy: []string{"p1"},
		StatTotals: map[string]map[string]float64{
			"p1": {"goals": 2, "assists": 1},
			"p2": {"goals": 0, "assists": 2},
		},
	}
	require.NoError(t, store.ApplyFinalizedResult(res))
	// A second finalized game accumulates on top of the first.
	require.NoError(t, store.ApplyFinalizedResult(league.FinalizedResult{
		GameID:     "g2",
		Played:     []string{"p1"},
		StatTotals: map[string]map[string]float64{"p1": {"goals": 1}},
	}))

	leaderboard, err := store.GetLeaderboard()
	require.NoError(t, err)
	require.Len(t, leaderboard, 3)

	top := leaderboard[0]
	assert.Equal(t, "p1", top.PlayerID)
	assert.Equal(t, 2, top.GamesPlayed)
	assert.Equal(t, 1, top.ResultsApproved)
	assert.InDelta(t, 3.0, top.StatTotals["goals"], 0.001)
	assert.InDelta(t, 1.0, top.StatTotals["assists"], 0.001)
	assert.InDelta(t, 100.0, top.AttendanceRate, 0.001)

	var p3 league.PlayerTotals
	for _, row := range leaderboard {
		if row.PlayerID == "p3" {
			p3 = row
		}
	}
	assert.Equal(t, 1, p3.GamesMissed)
	assert.InDelta(t, 0.0, p3.AttendanceRate, 0.001)
}

func TestClear(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("p1", "Player One")
	require.NoError(t, store.CreateGame(&league.Game{ID: "g1", Sport: sport.Football, Roster: []string{"p1"}}))

	store.Clear()

	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Len(t, players, 0)

	games, err := store.GetAllGames()
	require.NoError(t, err)
	assert.Len(t, games, 0)
}

func TestClearGame(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("p1", "Player One")
	require.NoError(t, store.CreateGame(&league.Game{ID: "g1", Sport: sport.Football, Roster: []string{"p1"}}))
	require.NoError(t, store.CreateGame(&league.Game{ID: "g2", Sport: sport.Football, Roster: []string{"p1"}}))

	store.ClearGame("g1")

	_, err := store.GetGame("g1")
	assert.ErrorIs(t, err, league.ErrGameNotFound)
	_, err = store.GetGame("g2")
	assert.NoError(t, err)
}
