package results

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
)

// NewStore creates a new SQL-backed approval ledger.
func NewStore(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// CreateSubmission persists the whole submission as one transaction: the
// game's completion stamp, the result record and one stat entry per roster
// participant. The completion stamp doubles as the idempotency key, so a
// concurrent or repeated submission loses the UPDATE race and gets
// ErrAlreadyCompleted with nothing written.
func (s *store) CreateSubmission(gameID string, record *ResultRecord, entries []PlayerStatEntry, completedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	res, err := tx.Exec("UPDATE games SET completed_at = ? WHERE id = ? AND completed_at IS NULL", completedAt, gameID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to stamp game completion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return ErrAlreadyCompleted
	}

	scoreJSON, err := json.Marshal(record.Score)
	if err != nil {
		tx.Rollback()
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO result_records (game_id, id, status, score_json, submitted_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, gameID, record.ID, record.Status, string(scoreJSON), record.SubmittedBy, record.CreatedAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert result record: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO player_stat_entries (game_id, player_id, stats_json, attended, vote)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		statsJSON, err := json.Marshal(entry.Stats)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(gameID, entry.PlayerID, string(statsJSON), entry.Attended, entry.Vote); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert stat entry for %s: %w", entry.PlayerID, err)
		}
	}

	return tx.Commit()
}

func (s *store) GetRecord(gameID string) (*ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRecordLocked(gameID)
}

func (s *store) getRecordLocked(gameID string) (*ResultRecord, error) {
	var rec ResultRecord
	var scoreJSON string
	var submittedBy sql.NullString
	err := s.db.QueryRow(`
		SELECT game_id, id, status, score_json, submitted_by, created_at
		FROM result_records WHERE game_id = ?
	`, gameID).Scan(&rec.GameID, &rec.ID, &rec.Status, &scoreJSON, &submittedBy, &rec.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to query result record: %w", err)
	}
	rec.SubmittedBy = submittedBy.String
	rec.Score = ScorePayload{}
	if err := json.Unmarshal([]byte(scoreJSON), &rec.Score); err != nil {
		log.Error("Failed to unmarshal score_json", "error", err, "gameID", gameID)
	}
	return &rec, nil
}

func (s *store) GetEntries(gameID string) ([]PlayerStatEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT game_id, player_id, stats_json, attended, vote, voted_at
		FROM player_stat_entries WHERE game_id = ? ORDER BY player_id
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PlayerStatEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			log.Error("Failed to scan stat entry row", "error", err, "gameID", gameID)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (s *store) GetEntry(gameID, playerID string) (*PlayerStatEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT game_id, player_id, stats_json, attended, vote, voted_at
		FROM player_stat_entries WHERE game_id = ? AND player_id = ?
	`, gameID, playerID)
	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotAParticipant
		}
		return nil, err
	}
	return entry, nil
}

func scanEntry(scanner interface{ Scan(...any) error }) (*PlayerStatEntry, error) {
	var entry PlayerStatEntry
	var statsJSON string
	var votedAt sql.NullInt64
	err := scanner.Scan(&entry.GameID, &entry.PlayerID, &statsJSON, &entry.Attended, &entry.Vote, &votedAt)
	if err != nil {
		return nil, err
	}
	if votedAt.Valid {
		ts := votedAt.Int64
		entry.VotedAt = &ts
	}
	entry.Stats = StatPayload{}
	if statsJSON != "" {
		if err := json.Unmarshal([]byte(statsJSON), &entry.Stats); err != nil {
			log.Error("Failed to unmarshal stats_json", "error", err, "gameID", entry.GameID, "playerID", entry.PlayerID)
		}
	}
	return &entry, nil
}

func (s *store) SetVote(gameID, playerID string, vote Vote, votedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The status condition closes the race against a concurrent
	// finalization: a vote landing after the record left PENDING must not
	// rewrite the entry.
	res, err := s.db.Exec(`
		UPDATE player_stat_entries SET vote = ?, voted_at = ?
		WHERE game_id = ? AND player_id = ?
		AND EXISTS (
			SELECT 1 FROM result_records r
			WHERE r.game_id = player_stat_entries.game_id AND r.status = ?
		)
	`, vote, votedAt, gameID, playerID, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to set vote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var status Status
		err := s.db.QueryRow("SELECT status FROM result_records WHERE game_id = ?", gameID).Scan(&status)
		if err == nil && status.Terminal() {
			return ErrResultAlreadyFinal
		}
		return ErrNotAParticipant
	}
	return nil
}

func (s *store) GetTally(gameID string) (Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Tally
	err := s.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN attended = 1 AND vote = 'APPROVED' THEN 1 END),
			COUNT(CASE WHEN attended = 1 AND vote = 'DISPUTED' THEN 1 END),
			COUNT(CASE WHEN attended = 1 THEN 1 END)
		FROM player_stat_entries WHERE game_id = ?
	`, gameID).Scan(&t.Approved, &t.Disputed, &t.Eligible)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to tally votes: %w", err)
	}
	return t, nil
}

// CompareAndSwapStatus serializes status recomputation: two concurrent vote
// calls race on the prior status value and the loser retries on a fresh
// tally, so the count is never silently lost.
func (s *store) CompareAndSwapStatus(gameID string, from, to Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE result_records SET status = ? WHERE game_id = ? AND status = ?", to, gameID, from)
	if err != nil {
		return false, fmt.Errorf("failed to swap status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *store) GetPendingApprovals(playerID string, actionableOnly bool) ([]PendingApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT e.game_id, e.player_id, e.stats_json, e.attended, e.vote, e.voted_at,
			r.id, r.status, r.score_json, r.submitted_by, r.created_at,
			g.sport, g.venue
		FROM player_stat_entries e
		JOIN result_records r ON e.game_id = r.game_id
		JOIN games g ON e.game_id = g.id
		WHERE e.player_id = ? AND r.status = 'PENDING' AND e.attended = 1
	`
	if actionableOnly {
		query += " AND e.vote = 'UNSET'"
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := s.db.Query(query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PendingApproval
	for rows.Next() {
		var item PendingApproval
		var statsJSON, scoreJSON string
		var votedAt sql.NullInt64
		var submittedBy, venue sql.NullString
		err := rows.Scan(
			&item.Entry.GameID, &item.Entry.PlayerID, &statsJSON, &item.Entry.Attended, &item.Entry.Vote, &votedAt,
			&item.Record.ID, &item.Record.Status, &scoreJSON, &submittedBy, &item.Record.CreatedAt,
			&item.Sport, &venue,
		)
		if err != nil {
			log.Error("Failed to scan pending approval row", "error", err, "playerID", playerID)
			continue
		}
		if votedAt.Valid {
			ts := votedAt.Int64
			item.Entry.VotedAt = &ts
		}
		item.Entry.Stats = StatPayload{}
		if statsJSON != "" {
			if err := json.Unmarshal([]byte(statsJSON), &item.Entry.Stats); err != nil {
				log.Error("Failed to unmarshal stats_json", "error", err, "gameID", item.Entry.GameID)
			}
		}
		item.Record.GameID = item.Entry.GameID
		item.Record.SubmittedBy = submittedBy.String
		item.Record.Score = ScorePayload{}
		if err := json.Unmarshal([]byte(scoreJSON), &item.Record.Score); err != nil {
			log.Error("Failed to unmarshal score_json", "error", err, "gameID", item.Entry.GameID)
		}
		item.GameID = item.Entry.GameID
		item.Venue = venue.String
		items = append(items, item)
	}
	return items, nil
}
