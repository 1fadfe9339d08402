package results

import (
	"database/sql"
	"sync"

	"github.com/sundaysquad/sundaysquad/internal/sport"
)

// store is the SQL-backed approval ledger.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Status defines the approval state of a result record.
type Status string

const (
	// StatusPending means the record is awaiting approval votes.
	StatusPending Status = "PENDING"
	// StatusFinalized means the approval threshold has been met. Terminal.
	StatusFinalized Status = "FINALIZED"
	// StatusDisputed is reserved for explicit organizer action. Terminal.
	// No automatic transition sets it; dispute votes only withhold approval.
	StatusDisputed Status = "DISPUTED"
	// StatusApplied means the finalized stats have been folded into the
	// player totals. Set once via compare-and-swap from FINALIZED, so a
	// redelivered finalized event cannot double-count. Terminal.
	StatusApplied Status = "APPLIED"
)

// Terminal reports whether no further votes can change the record.
func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusDisputed || s == StatusApplied
}

// Vote is a participant's verdict on a submitted result.
type Vote string

const (
	VoteUnset    Vote = "UNSET"
	VoteApproved Vote = "APPROVED"
	VoteDisputed Vote = "DISPUTED"
)

// StatValue holds a single player stat value, either a number or a flag,
// matching the kind declared by the sport's result configuration.
type StatValue struct {
	Kind   sport.FieldKind `json:"kind"`
	Number float64         `json:"number,omitempty"`
	Flag   bool            `json:"flag,omitempty"`
}

// Number wraps a numeric stat value.
func Number(v float64) StatValue {
	return StatValue{Kind: sport.FieldNumber, Number: v}
}

// Flag wraps a boolean stat value.
func Flag(v bool) StatValue {
	return StatValue{Kind: sport.FieldFlag, Flag: v}
}

// StatPayload maps stat field names to submitted values.
type StatPayload map[string]StatValue

// ScorePayload maps result field names to non-negative numbers.
type ScorePayload map[string]float64

// ResultRecord is the single record of a game's final score and approval status.
type ResultRecord struct {
	ID          string       `json:"id"`
	GameID      string       `json:"game_id"`
	Status      Status       `json:"status"`
	Score       ScorePayload `json:"score"`
	SubmittedBy string       `json:"submitted_by"`
	CreatedAt   int64        `json:"created_at"`
}

// PlayerStatEntry is one participant's submitted stats plus their approval
// vote for one game.
type PlayerStatEntry struct {
	GameID   string      `json:"game_id"`
	PlayerID string      `json:"player_id"`
	Stats    StatPayload `json:"stats"`
	Attended bool        `json:"attended"`
	Vote     Vote        `json:"vote"`
	VotedAt  *int64      `json:"voted_at"`
}

// PendingApproval is a participant's stat entry joined with its record and
// game, as served by the pending-approvals query.
type PendingApproval struct {
	Entry  PlayerStatEntry `json:"entry"`
	Record ResultRecord    `json:"record"`
	GameID string          `json:"game_id"`
	Sport  sport.Sport     `json:"sport"`
	Venue  string          `json:"venue"`
}

// SubmissionOutcome is returned by a successful result submission.
type SubmissionOutcome struct {
	RecordID string `json:"record_id"`
	Status   Status `json:"status"`
}

// Tally is a snapshot of the vote counts for one game.
type Tally struct {
	Approved int
	Disputed int
	Eligible int
}

// Event is the pubsub payload published when a result is submitted or
// finalized.
type Event struct {
	GameID   string `msgpack:"game_id"`
	RecordID string `msgpack:"record_id"`
	Status   Status `msgpack:"status"`
}
