package results

// Evaluate maps a vote tally to the resulting record status. Eligible voters
// are the attended entries only. A game with zero eligible voters never
// auto-finalizes; it stays pending until an organizer steps in.
//
// Evaluate is pure and never transitions backward: callers must skip it
// entirely once a record is terminal.
func Evaluate(approvedCount, eligibleVoters int, threshold float64) Status {
	if eligibleVoters <= 0 {
		return StatusPending
	}
	if float64(approvedCount)/float64(eligibleVoters) >= threshold {
		return StatusFinalized
	}
	return StatusPending
}
