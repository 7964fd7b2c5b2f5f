package notifier

import (
	"sync"

	"github.com/mauv0809/cricket-ladder/internal/league"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendPeriodSummaryFunc         func(summary league.PeriodSummary, dryRun bool) error
	SendMatchResultFunc           func(entry league.HistoryEntry, dryRun bool) error
	SendLeaderboardFunc           func(standings []league.Standing, dryRun bool) error
	FormatLeaderboardResponseFunc func(standings []league.Standing) (any, error)

	// Call records
	SendPeriodSummaryCalls []league.PeriodSummary
	SendMatchResultCalls   []league.HistoryEntry
	SendLeaderboardCalls   [][]league.Standing
	DryRunCalls            []bool

	LastLeaderboardResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPeriodSummaryCalls = nil
	m.SendMatchResultCalls = nil
	m.SendLeaderboardCalls = nil
	m.DryRunCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendPeriodSummary(summary league.PeriodSummary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPeriodSummaryCalls = append(m.SendPeriodSummaryCalls, summary)
	m.DryRunCalls = append(m.DryRunCalls, dryRun)
	if m.SendPeriodSummaryFunc != nil {
		return m.SendPeriodSummaryFunc(summary, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchResult(entry league.HistoryEntry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, entry)
	m.DryRunCalls = append(m.DryRunCalls, dryRun)
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(entry, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(standings []league.Standing, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, standings)
	m.DryRunCalls = append(m.DryRunCalls, dryRun)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(standings, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(standings []league.Standing) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(standings)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}
