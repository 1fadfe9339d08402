package coordinator

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/metrics"
	"github.com/sundaysquad/sundaysquad/internal/pubsub"
	"github.com/sundaysquad/sundaysquad/internal/results"
	"github.com/sundaysquad/sundaysquad/internal/sport"
)

// maxTallyRetries bounds the status recompute loop when concurrent voters
// race on the same record.
const maxTallyRetries = 3

// Coordinator runs the result approval workflow: it validates submissions,
// writes them to the ledger, applies votes and recomputes the record status
// against the sport's approval threshold.
type Coordinator struct {
	games    Games
	results  results.Store
	notifier Notifier
	metrics  metrics.Metrics
	counters metrics.CounterStore
	pubsub   pubsub.PubSubClient
}

// New creates a Coordinator wired to the given stores and side channels.
func New(games Games, store results.Store, notifier Notifier, m metrics.Metrics, counters metrics.CounterStore, ps pubsub.PubSubClient) *Coordinator {
	return &Coordinator{
		games:    games,
		results:  store,
		notifier: notifier,
		metrics:  m,
		counters: counters,
		pubsub:   ps,
	}
}

// SubmitGameResult validates and records the final result of a game. The
// attendance map must cover the full roster, the score must match the
// sport's result fields, and every attended player needs a stat payload
// matching the sport's stat fields. On success the game is stamped
// completed and a pending record is created in one transaction.
func (c *Coordinator) SubmitGameResult(gameID string, attendance map[string]bool, score results.ScorePayload, playerStats map[string]results.StatPayload) (results.SubmissionOutcome, error) {
	start := time.Now()

	game, err := c.games.GetGame(gameID)
	if err != nil {
		return results.SubmissionOutcome{}, err
	}
	if game.Completed() {
		return results.SubmissionOutcome{}, results.ErrAlreadyCompleted
	}

	cfg, ok := sport.ResultSchema(game.Sport)
	if !ok {
		return results.SubmissionOutcome{}, fmt.Errorf("%w: %s", results.ErrUnknownSport, game.Sport)
	}

	if err := validateAttendance(game.Roster, attendance); err != nil {
		return results.SubmissionOutcome{}, err
	}
	if err := validateScore(cfg, score); err != nil {
		return results.SubmissionOutcome{}, err
	}

	now := time.Now().Unix()
	entries := make([]results.PlayerStatEntry, 0, len(game.Roster))
	for _, pid := range game.Roster {
		entry := results.PlayerStatEntry{
			GameID:   gameID,
			PlayerID: pid,
			Stats:    results.StatPayload{},
			Vote:     results.VoteUnset,
		}
		if attendance[pid] {
			stats, ok := playerStats[pid]
			if !ok {
				return results.SubmissionOutcome{}, fmt.Errorf("%w: no stats for attended player %s", results.ErrInvalidStatSchema, pid)
			}
			if err := validateStats(cfg, pid, stats); err != nil {
				return results.SubmissionOutcome{}, err
			}
			entry.Attended = true
			entry.Stats = stats
		}
		entries = append(entries, entry)
	}

	record := &results.ResultRecord{
		ID:          uuid.NewString(),
		GameID:      gameID,
		Status:      results.StatusPending,
		Score:       score,
		SubmittedBy: game.OrganizerID,
		CreatedAt:   now,
	}
	if err := c.results.CreateSubmission(gameID, record, entries, now); err != nil {
		return results.SubmissionOutcome{}, err
	}

	c.metrics.IncResultsSubmitted()
	c.counters.Increment(metrics.CounterResultsSubmitted)
	c.metrics.ObserveSubmissionDuration(time.Since(start).Seconds())

	if err := c.pubsub.SendMessage(pubsub.EventResultSubmitted, results.Event{
		GameID:   gameID,
		RecordID: record.ID,
		Status:   results.StatusPending,
	}); err != nil {
		log.Error("Failed to publish result-submitted event", "gameID", gameID, "error", err)
	}

	log.Info("Result submitted", "gameID", gameID, "recordID", record.ID, "sport", game.Sport)
	return results.SubmissionOutcome{RecordID: record.ID, Status: results.StatusPending}, nil
}

// CastVote records a participant's verdict on a pending result and
// recomputes the record status. Only attended participants may vote, and a
// player may change their vote until the record reaches a terminal state.
func (c *Coordinator) CastVote(gameID, playerID string, vote results.Vote) (results.Status, error) {
	if vote != results.VoteApproved && vote != results.VoteDisputed {
		return "", fmt.Errorf("%w: got %q", results.ErrInvalidVote, vote)
	}

	record, err := c.results.GetRecord(gameID)
	if err != nil {
		return "", err
	}
	if record.Status.Terminal() {
		return record.Status, results.ErrResultAlreadyFinal
	}

	entry, err := c.results.GetEntry(gameID, playerID)
	if err != nil {
		return "", err
	}
	if !entry.Attended {
		return "", fmt.Errorf("%w: %s did not attend", results.ErrNotAParticipant, playerID)
	}

	if err := c.results.SetVote(gameID, playerID, vote, time.Now().Unix()); err != nil {
		return "", err
	}
	c.metrics.IncVotesCast()
	c.counters.Increment(metrics.CounterVotesCast)
	log.Info("Vote cast", "gameID", gameID, "playerID", playerID, "vote", vote)

	game, err := c.games.GetGame(gameID)
	if err != nil {
		return "", err
	}
	cfg, ok := sport.ResultSchema(game.Sport)
	if !ok {
		return "", fmt.Errorf("%w: %s", results.ErrUnknownSport, game.Sport)
	}

	return c.recomputeStatus(gameID, record.ID, cfg.ApprovalThreshold)
}

// recomputeStatus re-reads the tally and swaps the record status under
// optimistic concurrency. A lost swap means another voter got there first,
// so the tally is re-read and the swap retried a bounded number of times.
func (c *Coordinator) recomputeStatus(gameID, recordID string, threshold float64) (results.Status, error) {
	for attempt := 0; attempt < maxTallyRetries; attempt++ {
		record, err := c.results.GetRecord(gameID)
		if err != nil {
			return "", err
		}
		if record.Status.Terminal() {
			return record.Status, nil
		}

		tally, err := c.results.GetTally(gameID)
		if err != nil {
			return "", err
		}
		next := results.Evaluate(tally.Approved, tally.Eligible, threshold)
		if next == record.Status {
			return next, nil
		}

		swapped, err := c.results.CompareAndSwapStatus(gameID, record.Status, next)
		if err != nil {
			return "", err
		}
		if swapped {
			if next == results.StatusFinalized {
				c.metrics.IncResultsFinalized()
				c.counters.Increment(metrics.CounterResultsFinalized)
				log.Info("Result finalized", "gameID", gameID, "recordID", recordID,
					"approved", tally.Approved, "eligible", tally.Eligible)
				if err := c.pubsub.SendMessage(pubsub.EventResultFinalized, results.Event{
					GameID:   gameID,
					RecordID: recordID,
					Status:   results.StatusFinalized,
				}); err != nil {
					log.Error("Failed to publish result-finalized event", "gameID", gameID, "error", err)
				}
			}
			return next, nil
		}

		c.metrics.IncTallyConflicts()
		log.Debug("Lost status swap, retrying", "gameID", gameID, "attempt", attempt+1)
	}
	return "", fmt.Errorf("%w: %v after %d attempts", results.ErrStorageUnavailable, results.ErrStorageConflict, maxTallyRetries)
}

// NotifyApprovalRequest fans the approval request out to the squad. Invoked
// from the result-submitted event handler.
func (c *Coordinator) NotifyApprovalRequest(gameID string, dryRun bool) error {
	game, err := c.games.GetGame(gameID)
	if err != nil {
		return err
	}
	record, err := c.results.GetRecord(gameID)
	if err != nil {
		return err
	}
	entries, err := c.results.GetEntries(gameID)
	if err != nil {
		return err
	}
	return c.notifier.SendApprovalRequest(game, record, entries, dryRun)
}

// ApplyFinalizedResult folds a finalized record into the league totals and
// announces it. Invoked from the result-finalized event handler. Push
// delivery is at-least-once, so the fold is gated on the FINALIZED to
// APPLIED transition and a redelivered event is acked without re-counting.
func (c *Coordinator) ApplyFinalizedResult(gameID string, dryRun bool) error {
	game, err := c.games.GetGame(gameID)
	if err != nil {
		return err
	}
	record, err := c.results.GetRecord(gameID)
	if err != nil {
		return err
	}
	if record.Status == results.StatusApplied {
		log.Info("Result already applied, skipping", "gameID", gameID)
		return nil
	}
	if record.Status != results.StatusFinalized {
		return fmt.Errorf("record for game %s is %s, not finalized", gameID, record.Status)
	}
	entries, err := c.results.GetEntries(gameID)
	if err != nil {
		return err
	}

	final := league.FinalizedResult{
		GameID:     gameID,
		StatTotals: make(map[string]map[string]float64),
	}
	for _, e := range entries {
		if !e.Attended {
			final.Missed = append(final.Missed, e.PlayerID)
			continue
		}
		final.Played = append(final.Played, e.PlayerID)
		if e.Vote == results.VoteApproved {
			final.ApprovedBy = append(final.ApprovedBy, e.PlayerID)
		}
		totals := make(map[string]float64, len(e.Stats))
		for name, v := range e.Stats {
			switch v.Kind {
			case sport.FieldNumber:
				totals[name] = v.Number
			case sport.FieldFlag:
				if v.Flag {
					totals[name] = 1
				}
			}
		}
		final.StatTotals[e.PlayerID] = totals
	}
	sort.Strings(final.ApprovedBy)

	if !dryRun {
		swapped, err := c.results.CompareAndSwapStatus(gameID, results.StatusFinalized, results.StatusApplied)
		if err != nil {
			return err
		}
		if !swapped {
			log.Info("Result already applied, skipping", "gameID", gameID)
			return nil
		}
		if err := c.games.ApplyFinalizedResult(final); err != nil {
			return err
		}
	}
	return c.notifier.SendResultFinalized(game, record, dryRun)
}

// GetPendingApprovals lists the results still waiting on a player.
func (c *Coordinator) GetPendingApprovals(playerID string, actionableOnly bool) ([]results.PendingApproval, error) {
	return c.results.GetPendingApprovals(playerID, actionableOnly)
}

// GetResultStatus returns the record and current tally for a game.
func (c *Coordinator) GetResultStatus(gameID string) (*results.ResultRecord, results.Tally, error) {
	record, err := c.results.GetRecord(gameID)
	if err != nil {
		return nil, results.Tally{}, err
	}
	tally, err := c.results.GetTally(gameID)
	if err != nil {
		return nil, results.Tally{}, err
	}
	return record, tally, nil
}

func validateAttendance(roster []string, attendance map[string]bool) error {
	for _, pid := range roster {
		if _, ok := attendance[pid]; !ok {
			return fmt.Errorf("%w: missing attendance for %s", results.ErrIncompleteAttendance, pid)
		}
	}
	if len(attendance) != len(roster) {
		return fmt.Errorf("%w: attendance lists players outside the roster", results.ErrIncompleteAttendance)
	}
	return nil
}

func validateScore(cfg sport.ResultConfig, score results.ScorePayload) error {
	if len(score) != len(cfg.ResultFields) {
		return fmt.Errorf("%w: expected fields %v", results.ErrInvalidResultSchema, cfg.ResultFields)
	}
	for _, field := range cfg.ResultFields {
		v, ok := score[field]
		if !ok {
			return fmt.Errorf("%w: missing field %s", results.ErrInvalidResultSchema, field)
		}
		if v < 0 {
			return fmt.Errorf("%w: field %s is negative", results.ErrInvalidResultSchema, field)
		}
	}
	return nil
}

func validateStats(cfg sport.ResultConfig, playerID string, stats results.StatPayload) error {
	if len(stats) != len(cfg.StatFields) {
		return fmt.Errorf("%w: player %s submitted %d stat fields, expected %d", results.ErrInvalidStatSchema, playerID, len(stats), len(cfg.StatFields))
	}
	for _, field := range cfg.StatFields {
		v, ok := stats[field.Name]
		if !ok {
			return fmt.Errorf("%w: player %s missing stat %s", results.ErrInvalidStatSchema, playerID, field.Name)
		}
		if v.Kind != field.Kind {
			return fmt.Errorf("%w: stat %s for player %s must be %s", results.ErrInvalidStatSchema, field.Name, playerID, field.Kind)
		}
		if v.Kind == sport.FieldNumber && v.Number < 0 {
			return fmt.Errorf("%w: stat %s for player %s is negative", results.ErrInvalidStatSchema, field.Name, playerID)
		}
	}
	return nil
}
