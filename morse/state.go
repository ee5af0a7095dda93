package morse

import "sync"

// StateType represents the lifecycle state of a Scheduler.
type StateType int

const (
	// StateIdle indicates no consumer goroutine is running.
	StateIdle StateType = iota
	// StateDraining indicates the consumer is pulling and timing symbols.
	StateDraining
	// StateClosed indicates the channel is closed and the consumer has
	// stopped or is finishing its last symbol.
	StateClosed
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateMachine manages state transitions for the scheduler.
type StateMachine struct {
	mu          sync.RWMutex
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func(from StateType)
}

// NewStateMachine creates a new state machine with valid transitions.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:     {StateDraining},
			StateDraining: {StateClosed},
		},
		onEnter: make(map[StateType]func(StateType)),
	}
}

// Transition attempts to transition to the specified state.
func (sm *StateMachine) Transition(to StateType) bool {
	sm.mu.Lock()
	from := sm.current

	valid := false
	for _, state := range sm.transitions[from] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		sm.mu.Unlock()
		return false
	}

	sm.current = to
	enterFn := sm.onEnter[to]
	sm.mu.Unlock()

	if enterFn != nil {
		enterFn(from)
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func(from StateType)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = fn
}
