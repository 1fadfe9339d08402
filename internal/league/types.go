package league

import (
	"database/sql"
	"sync"

	"github.com/sundaysquad/sundaysquad/internal/sport"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Game represents a scheduled match with a roster of participants.
type Game struct {
	ID          string      `json:"id"`
	Sport       sport.Sport `json:"sport"`
	ScheduledAt int64       `json:"scheduled_at"`
	Venue       string      `json:"venue"`
	OrganizerID string      `json:"organizer_id"`
	CompletedAt *int64      `json:"completed_at"`
	CreatedAt   int64       `json:"created_at"`
	Roster      []string    `json:"roster"`
}

// Completed reports whether the game's completion timestamp has been set.
func (g *Game) Completed() bool {
	return g.CompletedAt != nil
}

// PlayerTotals represents a player's running totals across finalized results.
type PlayerTotals struct {
	PlayerID        string             `json:"player_id"`
	PlayerName      string             `json:"player_name"`
	GamesPlayed     int                `json:"games_played"`
	GamesMissed     int                `json:"games_missed"`
	ResultsApproved int                `json:"results_approved"`
	StatTotals      map[string]float64 `json:"stat_totals"`
	AttendanceRate  float64            `json:"attendance_rate"`
}

// FinalizedResult carries everything the league needs to fold one finalized
// game result into the player totals.
type FinalizedResult struct {
	GameID     string
	Played     []string
	Missed     []string
	ApprovedBy []string
	StatTotals map[string]map[string]float64
}
