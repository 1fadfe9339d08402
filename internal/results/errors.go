package results

import "errors"

// Errors returned by the submission and voting flows. Schema and
// state-precondition errors are terminal for the caller; retrying without
// changing input will not succeed. Storage errors are transient.
var (
	ErrAlreadyCompleted     = errors.New("game already has a submitted result")
	ErrIncompleteAttendance = errors.New("attendance must be marked for every roster participant")
	ErrInvalidResultSchema  = errors.New("result payload does not match the sport's result fields")
	ErrInvalidStatSchema    = errors.New("player stats do not match the sport's stat fields")
	ErrResultAlreadyFinal   = errors.New("result is already final")
	ErrNotAParticipant      = errors.New("player has no stat entry for this game")
	ErrUnknownSport         = errors.New("no result configuration registered for sport")
	ErrInvalidVote          = errors.New("vote must be APPROVED or DISPUTED")
	ErrRecordNotFound       = errors.New("no result record for game")

	// ErrStorageConflict signals a lost compare-and-swap on the record
	// status. It is retried internally before ErrStorageUnavailable is
	// surfaced.
	ErrStorageConflict    = errors.New("storage conflict while recomputing status")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
