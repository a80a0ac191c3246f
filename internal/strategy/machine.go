package strategy

import (
	"fmt"
	"math"

	"github.com/newthinker/statarb/internal/core"
)

// State is the position regime of the pair at one timestamp.
type State int

const (
	Flat State = iota
	PendingLong
	PendingShort
	Long  // long spread: long B, short beta*A
	Short // short spread: short B, long beta*A
)

func (s State) String() string {
	switch s {
	case Flat:
		return "flat"
	case PendingLong:
		return "pending_long"
	case PendingShort:
		return "pending_short"
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// Sign returns the signed position for the state: +1 long spread,
// -1 short spread, 0 for flat and pending.
func (s State) Sign() float64 {
	switch s {
	case Long:
		return 1
	case Short:
		return -1
	default:
		return 0
	}
}

// Event records which rule produced the most recent transition.
type Event int

const (
	EventNone Event = iota
	EventCross
	EventEntry
	EventExit
	EventTakeProfit
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventCross:
		return "cross"
	case EventEntry:
		return "entry"
	case EventExit:
		return "exit"
	case EventTakeProfit:
		return "take_profit"
	case EventStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Machine is the sequential position state machine. State at t depends
// only on state at t-1 and the z-score at t; the only auxiliary value
// carried across steps is the z at the moment the entry threshold was
// crossed.
type Machine struct {
	rules  Rules
	state  State
	zCross float64
	event  Event
}

// NewMachine validates the rules and returns a machine starting flat.
func NewMachine(r Rules) (*Machine, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &Machine{rules: r, state: Flat}, nil
}

// State returns the current regime.
func (m *Machine) State() State {
	return m.state
}

// LastEvent returns the rule that fired on the most recent Step.
func (m *Machine) LastEvent() Event {
	return m.event
}

// Step advances the machine by one bar and returns the resulting state.
// The five rules are adjudicated here in fixed priority: missing z,
// stop, take-profit, ordinary exit, then entry/confirmation.
func (m *Machine) Step(z float64) State {
	m.event = EventNone

	if math.IsNaN(z) {
		// A data gap holds open positions and remembers any pending
		// cross; it never forces an exit.
		return m.state
	}

	absZ := math.Abs(z)

	switch m.state {
	case Long, Short:
		switch {
		case absZ >= m.rules.Stop:
			// Stop overrides take-profit and the ordinary exit.
			m.state = Flat
			m.event = EventStop
		case m.rules.TakeProfitEnabled && absZ < m.rules.TakeProfit:
			m.state = Flat
			m.event = EventTakeProfit
		case absZ <= m.rules.ZOut:
			m.state = Flat
			m.event = EventExit
		}

	case Flat:
		// Entry is never instantaneous with the first cross.
		if z >= m.rules.ZIn {
			m.state = PendingShort
			m.zCross = z
			m.event = EventCross
		} else if z <= -m.rules.ZIn {
			m.state = PendingLong
			m.zCross = z
			m.event = EventCross
		}

	case PendingShort:
		if m.rules.ConfirmDelta <= 0 || z <= math.Max(m.rules.ZIn, m.zCross-m.rules.ConfirmDelta) {
			m.state = Short
			m.event = EventEntry
		}

	case PendingLong:
		if m.rules.ConfirmDelta <= 0 || z >= math.Min(-m.rules.ZIn, m.zCross+m.rules.ConfirmDelta) {
			m.state = Long
			m.event = EventEntry
		}
	}

	return m.state
}

// Trajectory is the full position path produced by a scan over a
// z-score series. XPos[t] == beta*YPos[t] at every timestamp.
type Trajectory struct {
	States []State
	Events []Event
	YPos   []float64
	XPos   []float64
}

// Generate runs the state machine over the z-score series and returns
// the dollar-neutral position trajectory. The scan is strictly ordered;
// it cannot be vectorized without losing the stop-before-exit priority
// and the one-bar entry delay.
func Generate(z []float64, beta float64, r Rules) (*Trajectory, error) {
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("beta must be finite, got %g", beta))
	}

	m, err := NewMachine(r)
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{
		States: make([]State, len(z)),
		Events: make([]Event, len(z)),
		YPos:   make([]float64, len(z)),
		XPos:   make([]float64, len(z)),
	}
	for i, zi := range z {
		st := m.Step(zi)
		traj.States[i] = st
		traj.Events[i] = m.LastEvent()
		traj.YPos[i] = st.Sign()
		traj.XPos[i] = beta * traj.YPos[i]
	}
	return traj, nil
}
