package notifier

import (
	"sync"

	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/results"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendApprovalRequestCalls []struct {
		Game    *league.Game
		Record  *results.ResultRecord
		Entries []results.PlayerStatEntry
	}
	SendResultFinalizedCalls []struct {
		Game   *league.Game
		Record *results.ResultRecord
	}
	SendLeaderboardCalls [][]league.PlayerTotals

	// Spies for format functions
	FormatLeaderboardResponseFunc      func(totals []league.PlayerTotals) (any, error)
	FormatPendingApprovalsResponseFunc func(playerID string, items []results.PendingApproval) (any, error)
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendApprovalRequestCalls = nil
	m.SendResultFinalizedCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendApprovalRequest(game *league.Game, record *results.ResultRecord, entries []results.PlayerStatEntry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendApprovalRequestCalls = append(m.SendApprovalRequestCalls, struct {
		Game    *league.Game
		Record  *results.ResultRecord
		Entries []results.PlayerStatEntry
	}{game, record, entries})
	return nil
}

func (m *Mock) SendResultFinalized(game *league.Game, record *results.ResultRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultFinalizedCalls = append(m.SendResultFinalizedCalls, struct {
		Game   *league.Game
		Record *results.ResultRecord
	}{game, record})
	return nil
}

func (m *Mock) SendLeaderboard(totals []league.PlayerTotals, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, totals)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(totals []league.PlayerTotals) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(totals)
	}
	return totals, nil
}

func (m *Mock) FormatPendingApprovalsResponse(playerID string, items []results.PendingApproval) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPendingApprovalsResponseFunc != nil {
		return m.FormatPendingApprovalsResponseFunc(playerID, items)
	}
	return items, nil
}
