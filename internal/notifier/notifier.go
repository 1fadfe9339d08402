package notifier

import (
	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/results"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For freshly submitted results awaiting approval
	SendApprovalRequest(game *league.Game, record *results.ResultRecord, entries []results.PlayerStatEntry, dryRun bool) error
	// For results that reached the approval threshold
	SendResultFinalized(game *league.Game, record *results.ResultRecord, dryRun bool) error
	// For slash commands
	SendLeaderboard(totals []league.PlayerTotals, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(totals []league.PlayerTotals) (any, error)
	FormatPendingApprovalsResponse(playerID string, items []results.PendingApproval) (any, error)
}
