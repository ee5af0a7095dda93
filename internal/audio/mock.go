package audio

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// ErrDriverClosed is returned by a MockDriver after Close.
var ErrDriverClosed = errors.New("driver is closed")

// MockAction is a recorded driver call.
type MockAction int

const (
	ActionEngage MockAction = iota
	ActionDisengage
)

// String returns the string representation of the action.
func (a MockAction) String() string {
	switch a {
	case ActionEngage:
		return "engage"
	case ActionDisengage:
		return "disengage"
	default:
		return "unknown"
	}
}

// MockEvent is one recorded call with the time it was made.
type MockEvent struct {
	Action MockAction
	At     time.Time
}

// MockDriver records keying for tests and silent runs.
type MockDriver struct {
	mu     sync.Mutex
	events []MockEvent
	closed bool

	// Errors returned by the next calls; nil means succeed
	engageErr    error
	disengageErr error

	engaged        atomic.Bool
	engageCount    atomic.Int64
	disengageCount atomic.Int64

	// OnEngage and OnDisengage are called after a successful call.
	OnEngage    func()
	OnDisengage func()
}

// NewMockDriver creates a mock driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

// Engage records a tone start.
func (m *MockDriver) Engage() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrDriverClosed
	}
	if err := m.engageErr; err != nil {
		m.mu.Unlock()
		return err
	}
	m.events = append(m.events, MockEvent{Action: ActionEngage, At: time.Now()})
	fn := m.OnEngage
	m.mu.Unlock()

	m.engaged.Store(true)
	m.engageCount.Add(1)
	if fn != nil {
		fn()
	}
	return nil
}

// Disengage records a tone stop.
func (m *MockDriver) Disengage() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrDriverClosed
	}
	if err := m.disengageErr; err != nil {
		m.mu.Unlock()
		return err
	}
	m.events = append(m.events, MockEvent{Action: ActionDisengage, At: time.Now()})
	fn := m.OnDisengage
	m.mu.Unlock()

	m.engaged.Store(false)
	m.disengageCount.Add(1)
	if fn != nil {
		fn()
	}
	return nil
}

// Close makes further calls fail.
func (m *MockDriver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetErrors makes Engage and Disengage fail with the given errors.
func (m *MockDriver) SetErrors(engage, disengage error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engageErr = engage
	m.disengageErr = disengage
}

// Events returns a copy of the recorded calls.
func (m *MockDriver) Events() []MockEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// Engaged reports whether the tone is currently on.
func (m *MockDriver) Engaged() bool {
	return m.engaged.Load()
}

// Counts returns how many times each call succeeded.
func (m *MockDriver) Counts() (engages, disengages int64) {
	return m.engageCount.Load(), m.disengageCount.Load()
}

// ToneDurations returns the time between each engage and the following
// disengage.
func (m *MockDriver) ToneDurations() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var durations []time.Duration
	var start time.Time
	on := false
	for _, e := range m.events {
		switch e.Action {
		case ActionEngage:
			start, on = e.At, true
		case ActionDisengage:
			if on {
				durations = append(durations, e.At.Sub(start))
				on = false
			}
		}
	}
	return durations
}

// Reset clears the recording.
func (m *MockDriver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.engaged.Store(false)
	m.engageCount.Store(0)
	m.disengageCount.Store(0)
}
