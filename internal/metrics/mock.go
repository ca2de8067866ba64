package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	cyclesRun          int
	periodFailures     map[string]int
	cycleDurations     []float64
	postsPublished     map[string]int
	postFailures       int
	roleActions        map[string]int
	roleActionFailures map[string]int
	statsFetched       int
	statsFetchFailed   int
	registeredPlayers  int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		periodFailures:     make(map[string]int),
		cycleDurations:     make([]float64, 0),
		postsPublished:     make(map[string]int),
		roleActions:        make(map[string]int),
		roleActionFailures: make(map[string]int),
	}
}

func (m *Mock) IncCyclesRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cyclesRun++
}

func (m *Mock) IncPeriodFailures(period string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodFailures[period]++
}

func (m *Mock) ObserveCycleDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleDurations = append(m.cycleDurations, duration)
}

func (m *Mock) IncPostsPublished(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postsPublished[action]++
}

func (m *Mock) IncPostFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postFailures++
}

func (m *Mock) IncRoleActions(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleActions[kind]++
}

func (m *Mock) IncRoleActionFailures(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleActionFailures[kind]++
}

func (m *Mock) IncStatsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsFetched++
}

func (m *Mock) IncStatsFetchFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsFetchFailed++
}

func (m *Mock) SetRegisteredPlayers(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registeredPlayers = count
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// CyclesRun returns the number of times IncCyclesRun was called.
func (m *Mock) CyclesRun() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cyclesRun
}

// PeriodFailures returns how often IncPeriodFailures was called for period.
func (m *Mock) PeriodFailures(period string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.periodFailures[period]
}

// PostsPublished returns how often IncPostsPublished was called for action.
func (m *Mock) PostsPublished(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.postsPublished[action]
}

// PostFailures returns the number of times IncPostFailures was called.
func (m *Mock) PostFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.postFailures
}

// RoleActions returns how often IncRoleActions was called for kind.
func (m *Mock) RoleActions(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roleActions[kind]
}

// RoleActionFailures returns how often IncRoleActionFailures was called for kind.
func (m *Mock) RoleActionFailures(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roleActionFailures[kind]
}

// StatsFetched returns the number of times IncStatsFetched was called.
func (m *Mock) StatsFetched() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsFetched
}

// StatsFetchFailed returns the number of times IncStatsFetchFailed was called.
func (m *Mock) StatsFetchFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsFetchFailed
}

// RegisteredPlayers returns the last value passed to SetRegisteredPlayers.
func (m *Mock) RegisteredPlayers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registeredPlayers
}
