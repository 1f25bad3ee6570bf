package outbound

import (
	"errors"
	"fmt"
)

// State is the sharing lifecycle of the local actor
type State string

const (
	StateIdle     State = "idle"
	StateSharing  State = "sharing"
	StateRetrying State = "retrying"
	StateFailed   State = "failed"
)

// ErrInvalidTransition is returned for a transition the lifecycle does not allow
var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[State][]State{
	StateIdle:     {StateSharing},
	StateSharing:  {StateRetrying, StateFailed, StateIdle},
	StateRetrying: {StateRetrying, StateSharing, StateFailed, StateIdle},
	StateFailed:   {StateSharing, StateIdle},
}

// stateMachine is not safe for concurrent use; the pipeline guards it
type stateMachine struct {
	state State
}

func newStateMachine() stateMachine {
	return stateMachine{state: StateIdle}
}

func (m *stateMachine) Current() State {
	return m.state
}

// active reports whether samples are being admitted
func (m *stateMachine) active() bool {
	return m.state == StateSharing || m.state == StateRetrying
}

func (m *stateMachine) transition(to State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == to {
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, to)
}

func (m *stateMachine) start() error {
	return m.transition(StateSharing)
}

func (m *stateMachine) retry() error {
	return m.transition(StateRetrying)
}

// recover leaves retrying after a good sample. It is a no-op while sharing
// and never restarts an idle or failed machine.
func (m *stateMachine) recover() error {
	switch m.state {
	case StateSharing:
		return nil
	case StateRetrying:
		return m.transition(StateSharing)
	default:
		return fmt.Errorf("%w: recover from %s", ErrInvalidTransition, m.state)
	}
}

func (m *stateMachine) fail() error {
	return m.transition(StateFailed)
}

// stop is a no-op when already idle
func (m *stateMachine) stop() error {
	if m.state == StateIdle {
		return nil
	}
	return m.transition(StateIdle)
}
