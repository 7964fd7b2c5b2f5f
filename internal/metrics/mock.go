package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	operations       map[string]int
	rejections       map[string]int
	matchesApplied   int
	periodsFinalized int
	ratingDeltas     []float64
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		operations: make(map[string]int),
		rejections: make(map[string]int),
	}
}

func (m *Mock) IncOperation(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op]++
}

func (m *Mock) IncRejection(op, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[op+"/"+code]++
}

func (m *Mock) IncMatchesApplied(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesApplied += n
}

func (m *Mock) IncPeriodsFinalized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodsFinalized++
}

func (m *Mock) ObserveRatingDelta(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingDeltas = append(m.ratingDeltas, delta)
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

// Operations returns how often the given operation was attempted.
func (m *Mock) Operations(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operations[op]
}

// Rejections returns how often the given operation was rejected with code.
func (m *Mock) Rejections(op, code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejections[op+"/"+code]
}

// MatchesApplied returns the total passed to IncMatchesApplied.
func (m *Mock) MatchesApplied() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesApplied
}

// PeriodsFinalized returns the number of times IncPeriodsFinalized was called.
func (m *Mock) PeriodsFinalized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.periodsFinalized
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
