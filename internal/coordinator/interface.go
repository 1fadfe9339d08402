package coordinator

import (
	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/results"
)

// Games is the slice of the league store the coordinator needs.
type Games interface {
	GetGame(gameID string) (*league.Game, error)
	ApplyFinalizedResult(res league.FinalizedResult) error
}

// Notifier delivers workflow messages once the coordinator has decided
// something is worth telling the squad about.
type Notifier interface {
	SendApprovalRequest(game *league.Game, record *results.ResultRecord, entries []results.PlayerStatEntry, dryRun bool) error
	SendResultFinalized(game *league.Game, record *results.ResultRecord, dryRun bool) error
}
