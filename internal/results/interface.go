package results

// Store defines the persistence operations of the approval ledger.
type Store interface {
	// CreateSubmission writes the game completion stamp, the result record
	// and all stat entries as one transaction. It fails with
	// ErrAlreadyCompleted if the game's completion stamp is already set.
	CreateSubmission(gameID string, record *ResultRecord, entries []PlayerStatEntry, completedAt int64) error

	GetRecord(gameID string) (*ResultRecord, error)
	GetEntries(gameID string) ([]PlayerStatEntry, error)
	GetEntry(gameID, playerID string) (*PlayerStatEntry, error)

	// SetVote overwrites the entry's vote. Last write wins.
	SetVote(gameID, playerID string, vote Vote, votedAt int64) error

	// GetTally counts approved, disputed and eligible (attended) entries.
	GetTally(gameID string) (Tally, error)

	// CompareAndSwapStatus updates the record status only if it still has
	// the expected prior value, reporting whether the swap happened.
	CompareAndSwapStatus(gameID string, from, to Status) (bool, error)

	// GetPendingApprovals lists a participant's entries on non-terminal
	// records. With actionableOnly, entries already voted on are skipped.
	GetPendingApprovals(playerID string, actionableOnly bool) ([]PendingApproval, error)
}
