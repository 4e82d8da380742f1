package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/chats/internal/bus"
)

// State is the load lifecycle of the chat store's projection.
type State string

const (
	LoggedOut State = "LOGGED_OUT"
	Loading   State = "LOADING"
	Ready     State = "READY"
	Failed    State = "FAILED"
)

// Loading -> Loading happens when the identity changes mid-load.
var validTransitions = map[State][]State{
	LoggedOut: {Loading},
	Loading:   {Loading, Ready, Failed, LoggedOut},
	Ready:     {Loading, LoggedOut},
	Failed:    {Loading, LoggedOut},
}

// Machine tracks and enforces load state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in LoggedOut.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: LoggedOut,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Publish(bus.NewEvent(bus.KindStatusChanged, StatusChange{From: from, To: to}))
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
