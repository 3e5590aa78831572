package pipeline

import "fmt"

// State identifies a position in the pipeline state machine.
type State string

const (
	StateStart     State = "START"
	StateSyncing   State = "SYNCING"
	StateBuilding  State = "BUILDING"
	StatePatching  State = "PATCHING"
	StateLaunching State = "LAUNCHING"
	StateDone      State = "DONE"
	StateFailed    State = "FAILED"
)

// IsTerminal reports whether the state is terminal.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateFailed
}

// stageOrder is the forward path of the machine. FAILED is reachable
// from every non-terminal state and is not part of the forward path.
var stageOrder = []State{StateStart, StateSyncing, StateBuilding, StatePatching, StateLaunching, StateDone}

// Machine tracks the current pipeline state and validates transitions.
//
// The caller drives the machine strictly forward; an out-of-order
// transition indicates a sequencing bug in the orchestrator, not an
// external failure, and is surfaced as an error.
type Machine struct {
	current State
}

// NewMachine returns a machine positioned at START.
func NewMachine() *Machine {
	return &Machine{current: StateStart}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	return m.current
}

// To transitions the machine to next, validating that the transition is
// allowed. Valid transitions are single forward steps along the stage
// order, plus any non-terminal state to FAILED.
func (m *Machine) To(next State) error {
	if IsTerminal(m.current) {
		return fmt.Errorf("invalid transition: %s is terminal, cannot move to %s", m.current, next)
	}
	if next == StateFailed {
		m.current = StateFailed
		return nil
	}
	for i, s := range stageOrder[:len(stageOrder)-1] {
		if s == m.current {
			if stageOrder[i+1] != next {
				return fmt.Errorf("disallowed transition: %s -> %s", m.current, next)
			}
			m.current = next
			return nil
		}
	}
	return fmt.Errorf("unknown state: %s", m.current)
}
