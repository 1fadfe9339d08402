package results_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sundaysquad/sundaysquad/internal/database"
	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/results"
	"github.com/sundaysquad/sundaysquad/internal/sport"
)

// setupTestDB creates a temporary in-memory SQLite database with one game
// ready to receive a submission.
func setupTestDB(t *testing.T) (results.Store, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	games := league.New(db)
	require.NoError(t, games.UpsertPlayers([]league.PlayerInfo{
		{ID: "p1", Name: "Player One"},
		{ID: "p2", Name: "Player Two"},
		{ID: "p3", Name: "Player Three"},
		{ID: "p4", Name: "Player Four"},
	}))
	require.NoError(t, games.CreateGame(&league.Game{
		ID:          "g1",
		Sport:       sport.Football,
		ScheduledAt: time.Now().Unix(),
		CreatedAt:   time.Now().Unix(),
		Roster:      []string{"p1", "p2", "p3", "p4"},
	}))

	return results.NewStore(db), db, dbTeardown
}

func submitFixture(t *testing.T, store results.Store) {
	t.Helper()

	record := &results.ResultRecord{
		ID:        "rec-1",
		GameID:    "g1",
		Status:    results.StatusPending,
		Score:     results.ScorePayload{"home_score": 2, "away_score": 1},
		CreatedAt: time.Now().Unix(),
	}
	entries := []results.PlayerStatEntry{
		{PlayerID: "p1", Stats: results.StatPayload{"goals": results.Number(2)}, Attended: true, Vote: results.VoteUnset},
		{PlayerID: "p2", Stats: results.StatPayload{"goals": results.Number(1)}, Attended: true, Vote: results.VoteUnset},
		{PlayerID: "p3", Stats: results.StatPayload{"goals": results.Number(0)}, Attended: true, Vote: results.VoteUnset},
		{PlayerID: "p4", Stats: results.StatPayload{}, Attended: false, Vote: results.VoteUnset},
	}
	require.NoError(t, store.CreateSubmission("g1", record, entries, time.Now().Unix()))
}

func TestCreateSubmission(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	submitFixture(t, store)

	rec, err := store.GetRecord("g1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, results.StatusPending, rec.Status)
	assert.InDelta(t, 2.0, rec.Score["home_score"], 0.001)

	entries, err := store.GetEntries("g1")
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	var completedAt sql.NullInt64
	require.NoError(t, db.QueryRow("SELECT completed_at FROM games WHERE id = 'g1'").Scan(&completedAt))
	assert.True(t, completedAt.Valid, "game should be stamped completed")
}

func TestCreateSubmission_AlreadyCompleted(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	submitFixture(t, store)

	record := &results.ResultRecord{ID: "rec-2", GameID: "g1", Status: results.StatusPending, Score: results.ScorePayload{}}
	err := store.CreateSubmission("g1", record, nil, time.Now().Unix())
	assert.ErrorIs(t, err, results.ErrAlreadyCompleted)

	// The losing submission must leave no trace.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM result_records WHERE game_id = 'g1'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestGetEntry(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	submitFixture(t, store)

	entry, err := store.GetEntry("g1", "p1")
	require.NoError(t, err)
	assert.True(t, entry.Attended)
	assert.Equal(t, results.VoteUnset, entry.Vote)
	assert.InDelta(t, 2.0, entry.Stats["goals"].Number, 0.001)

	_, err = store.GetEntry("g1", "stranger")
	assert.ErrorIs(t, err, results.ErrNotAParticipant)
}

func TestSetVoteAndTally(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	submitFixture(t, store)

	require.NoError(t, store.SetVote("g1", "p1", results.VoteApproved, time.Now().Unix()))
	require.NoError(t, store.SetVote("g1", "p2", results.VoteDisputed, time.Now().Unix()))

	tally, err := store.GetTally("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Approved)
	assert.Equal(t, 1, tally.Disputed)
	assert.Equal(t, 3, tally.Eligible, "non-attended entries must not count as eligible")

	// Last write wins.
	require.NoError(t, store.SetVote("g1", "p2", results.VoteApproved, time.Now().Unix()))
	tally, err = store.GetTally("g1")
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Approved)
	assert.Equal(t, 0, tally.Disputed)
	assert.Equal(t, 3, tally.Eligible)

	err = store.SetVote("g1", "stranger", results.VoteApproved, time.Now().Unix())
	assert.ErrorIs(t, err, results.ErrNotAParticipant)
}

func TestSetVote_TerminalRecord(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	submitFixture(t, store)

	swapped, err := store.CompareAndSwapStatus("g1", results.StatusPending, results.StatusFinalized)
	require.NoError(t, err)
	require.True(t, swapped)

	// A vote racing the finalization must bounce, not rewrite the entry.
	err = store.SetVote("g1", "p2", results.VoteApproved, time.Now().Unix())
	assert.ErrorIs(t, err, results.ErrResultAlreadyFinal)

	entry, err := store.GetEntry("g1", "p2")
	require.NoError(t, err)
	assert.Equal(t, results.VoteUnset, entry.Vote)
}

func TestCompareAndSwapStatus(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	submitFixture(t, store)

	swapped, err := store.CompareAndSwapStatus("g1", results.StatusPending, results.StatusFinalized)
	require.NoError(t, err)
	assert.True(t, swapped)

	// Second swap from the stale prior value loses.
	swapped, err = store.CompareAndSwapStatus("g1", results.StatusPending, results.StatusFinalized)
	require.NoError(t, err)
	assert.False(t, swapped)

	rec, err := store.GetRecord("g1")
	require.NoError(t, err)
	assert.Equal(t, results.StatusFinalized, rec.Status)
}

func TestGetPendingApprovals(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	submitFixture(t, store)

	// Raw listing includes entries the player already voted on.
	require.NoError(t, store.SetVote("g1", "p1", results.VoteApproved, time.Now().Unix()))

	raw, err := store.GetPendingApprovals("p1", false)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, sport.Football, raw[0].Sport)
	assert.Equal(t, results.VoteApproved, raw[0].Entry.Vote)
	assert.InDelta(t, 2.0, raw[0].Record.Score["home_score"], 0.001)

	actionable, err := store.GetPendingApprovals("p1", true)
	require.NoError(t, err)
	assert.Len(t, actionable, 0)

	actionable, err = store.GetPendingApprovals("p2", true)
	require.NoError(t, err)
	assert.Len(t, actionable, 1)

	// Non-attended participants have nothing to approve.
	none, err := store.GetPendingApprovals("p4", false)
	require.NoError(t, err)
	assert.Len(t, none, 0)

	// Finalized records drop out of the listing entirely.
	_, err = store.CompareAndSwapStatus("g1", results.StatusPending, results.StatusFinalized)
	require.NoError(t, err)
	raw, err = store.GetPendingApprovals("p2", false)
	require.NoError(t, err)
	assert.Len(t, raw, 0)
}

func TestGetRecord_NotFound(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.GetRecord("missing")
	assert.ErrorIs(t, err, results.ErrRecordNotFound)
}
