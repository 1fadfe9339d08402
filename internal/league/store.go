package league

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrGameNotFound is returned when a game id does not exist in the store.
var ErrGameNotFound = errors.New("game not found")

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

func (s *store) AddPlayer(playerID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO players (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`, playerID, name)
	if err != nil {
		log.Error("Failed to add player", "error", err, "playerID", playerID)
	} else {
		log.Debug("Upserted player", "playerID", playerID, "name", name)
	}
}

func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(p.ID, p.Name); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		var name sql.NullString
		if err := rows.Scan(&p.ID, &name); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String // handle NULL name from db
		players = append(players, p)
	}
	return players, nil
}

// CreateGame inserts a game and its roster as one transaction.
func (s *store) CreateGame(game *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO games (id, sport, scheduled_at, venue, organizer_id, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, game.ID, game.Sport, game.ScheduledAt, game.Venue, nullableString(game.OrganizerID), game.CompletedAt, game.CreatedAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert game: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO game_roster (game_id, player_id) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, playerID := range game.Roster {
		if _, err := stmt.Exec(game.ID, playerID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert roster slot: %w", err)
		}
	}

	return tx.Commit()
}

func (s *store) GetGame(gameID string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var g Game
	var venue, organizerID sql.NullString
	var completedAt sql.NullInt64
	err := s.db.QueryRow(`
		SELECT id, sport, scheduled_at, venue, organizer_id, completed_at, created_at
		FROM games WHERE id = ?
	`, gameID).Scan(&g.ID, &g.Sport, &g.ScheduledAt, &venue, &organizerID, &completedAt, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to query game: %w", err)
	}
	g.Venue = venue.String
	g.OrganizerID = organizerID.String
	if completedAt.Valid {
		ts := completedAt.Int64
		g.CompletedAt = &ts
	}

	roster, err := s.rosterLocked(gameID)
	if err != nil {
		return nil, err
	}
	g.Roster = roster
	return &g, nil
}

func (s *store) rosterLocked(gameID string) ([]string, error) {
	rows, err := s.db.Query("SELECT player_id FROM game_roster WHERE game_id = ? ORDER BY player_id", gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var roster []string
	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		roster = append(roster, playerID)
	}
	return roster, nil
}

func (s *store) GetAllGames() ([]*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, sport, scheduled_at, venue, organizer_id, completed_at, created_at
		FROM games ORDER BY scheduled_at DESC
	`)
	if err != nil {
		log.Error("Failed to query all games", "error", err)
		return nil, err
	}
	defer rows.Close()

	var games []*Game
	for rows.Next() {
		var g Game
		var venue, organizerID sql.NullString
		var completedAt sql.NullInt64
		if err := rows.Scan(&g.ID, &g.Sport, &g.ScheduledAt, &venue, &organizerID, &completedAt, &g.CreatedAt); err != nil {
			log.Error("Failed to scan game row", "error", err)
			continue
		}
		g.Venue = venue.String
		g.OrganizerID = organizerID.String
		if completedAt.Valid {
			ts := completedAt.Int64
			g.CompletedAt = &ts
		}
		games = append(games, &g)
	}

	for _, g := range games {
		roster, err := s.rosterLocked(g.ID)
		if err != nil {
			log.Error("Failed to load roster", "error", err, "gameID", g.ID)
			continue
		}
		g.Roster = roster
	}
	return games, nil
}

// ApplyFinalizedResult folds one finalized game result into the player totals.
func (s *store) ApplyFinalizedResult(res FinalizedResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	bump := func(playerID, column string) error {
		_, err := tx.Exec(fmt.Sprintf(`
			INSERT INTO player_totals (player_id, %s) VALUES (?, 1)
			ON CONFLICT(player_id) DO UPDATE SET %s = %s + 1;
		`, column, column, column), playerID)
		return err
	}

	for _, playerID := range res.Played {
		if err := bump(playerID, "games_played"); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to bump games_played: %w", err)
		}
		if err := s.mergeStatTotals(tx, playerID, res.StatTotals[playerID]); err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, playerID := range res.Missed {
		if err := bump(playerID, "games_missed"); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to bump games_missed: %w", err)
		}
	}
	for _, playerID := range res.ApprovedBy {
		if err := bump(playerID, "results_approved"); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to bump results_approved: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Applied finalized result to player totals", "gameID", res.GameID, "played", len(res.Played), "missed", len(res.Missed))
	return nil
}

func (s *store) mergeStatTotals(tx *sql.Tx, playerID string, delta map[string]float64) error {
	if len(delta) == 0 {
		return nil
	}

	var raw string
	err := tx.QueryRow("SELECT stat_totals_json FROM player_totals WHERE player_id = ?", playerID).Scan(&raw)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read stat totals: %w", err)
	}

	totals := make(map[string]float64)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &totals); err != nil {
			log.Error("Failed to unmarshal stat_totals_json, resetting", "error", err, "playerID", playerID)
			totals = make(map[string]float64)
		}
	}
	for field, value := range delta {
		totals[field] += value
	}

	merged, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	_, err = tx.Exec("UPDATE player_totals SET stat_totals_json = ? WHERE player_id = ?", string(merged), playerID)
	return err
}

// GetLeaderboard returns all players with totals, most games played first.
func (s *store) GetLeaderboard() ([]PlayerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT pt.player_id, p.name, pt.games_played, pt.games_missed, pt.results_approved, pt.stat_totals_json
		FROM player_totals pt
		JOIN players p ON pt.player_id = p.id
		ORDER BY pt.games_played DESC, pt.results_approved DESC, p.name;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaderboard []PlayerTotals
	for rows.Next() {
		var t PlayerTotals
		var name sql.NullString
		var raw string
		if err := rows.Scan(&t.PlayerID, &name, &t.GamesPlayed, &t.GamesMissed, &t.ResultsApproved, &raw); err != nil {
			return nil, err
		}
		t.PlayerName = name.String
		t.StatTotals = make(map[string]float64)
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &t.StatTotals); err != nil {
				log.Error("Failed to unmarshal stat_totals_json", "error", err, "playerID", t.PlayerID)
			}
		}
		if total := t.GamesPlayed + t.GamesMissed; total > 0 {
			t.AttendanceRate = (float64(t.GamesPlayed) / float64(total)) * 100
		}
		leaderboard = append(leaderboard, t)
	}
	return leaderboard, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"player_stat_entries", "result_records", "game_roster", "games", "player_totals", "players", "counters"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "error", err, "table", table)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) ClearGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing game", "error", err)
		return
	}
	for _, stmt := range []string{
		"DELETE FROM player_stat_entries WHERE game_id = ?",
		"DELETE FROM result_records WHERE game_id = ?",
		"DELETE FROM game_roster WHERE game_id = ?",
		"DELETE FROM games WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, gameID); err != nil {
			log.Error("Failed to clear game", "error", err, "gameID", gameID)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing game", "error", err)
	}
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
