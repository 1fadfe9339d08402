package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	resultsSubmitted    int
	votesCast           int
	resultsFinalized    int
	tallyConflicts      int
	submissionDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		submissionDurations: make([]float64, 0),
	}
}

func (m *Mock) IncResultsSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsSubmitted++
}

func (m *Mock) IncVotesCast() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votesCast++
}

func (m *Mock) IncResultsFinalized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsFinalized++
}

func (m *Mock) IncTallyConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tallyConflicts++
}

func (m *Mock) ObserveSubmissionDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissionDurations = append(m.submissionDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ResultsSubmitted returns the number of times IncResultsSubmitted was called.
func (m *Mock) ResultsSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsSubmitted
}

// VotesCast returns the number of times IncVotesCast was called.
func (m *Mock) VotesCast() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.votesCast
}

// ResultsFinalized returns the number of times IncResultsFinalized was called.
func (m *Mock) ResultsFinalized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsFinalized
}

// TallyConflicts returns the number of times IncTallyConflicts was called.
func (m *Mock) TallyConflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tallyConflicts
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
