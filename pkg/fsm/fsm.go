// Package fsm provides the state machine description drawn by the diagram
// renderer and the tracker that follows the live controller's current state.
package fsm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidDescription is wrapped by every validation failure.
var ErrInvalidDescription = errors.New("invalid description")

// Transition is an outgoing edge of a state.
type Transition struct {
	To    int
	Label string
}

// State describes one state of the machine and where it is drawn.
type State struct {
	ID    int
	X, Y  float64
	Label string
	Final bool
	Start bool

	// SelfLink is the label of a self-loop; empty means no loop.
	SelfLink string
	// SelfLinkAngle overrides the default loop direction (radians).
	SelfLinkAngle *float64

	Transitions []Transition
}

// HasSelfLink reports whether the state is drawn with a self-loop.
func (s *State) HasSelfLink() bool {
	return s.SelfLink != ""
}

// Description is a complete machine description.
type Description struct {
	Name   string
	States []State
}

// New creates an empty description.
func New(name string) *Description {
	return &Description{
		Name:   name,
		States: make([]State, 0),
	}
}

// AddState adds a state. A state whose id is already present is ignored.
func (d *Description) AddState(s State) {
	if d.StateIndex(s.ID) >= 0 {
		return
	}
	d.States = append(d.States, s)
}

// AddTransition adds an outgoing transition to the state with id from.
func (d *Description) AddTransition(from, to int, label string) error {
	i := d.StateIndex(from)
	if i < 0 {
		return fmt.Errorf("%w: transition from unknown state %d", ErrInvalidDescription, from)
	}
	d.States[i].Transitions = append(d.States[i].Transitions, Transition{To: to, Label: label})
	return nil
}

// Validate checks that the description is well-formed.
func (d *Description) Validate() error {
	if len(d.States) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalidDescription)
	}

	seen := make(map[int]bool, len(d.States))
	for _, s := range d.States {
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate state id %d", ErrInvalidDescription, s.ID)
		}
		seen[s.ID] = true
	}

	for _, s := range d.States {
		for i, t := range s.Transitions {
			if !seen[t.To] {
				return fmt.Errorf("%w: state %d transition %d: target %d not in states",
					ErrInvalidDescription, s.ID, i, t.To)
			}
		}
	}

	return nil
}

// StateIndex returns the index of the state with the given id, or -1 if not found.
func (d *Description) StateIndex(id int) int {
	for i := range d.States {
		if d.States[i].ID == id {
			return i
		}
	}
	return -1
}

// State returns the state with the given id.
func (d *Description) State(id int) (*State, bool) {
	i := d.StateIndex(id)
	if i < 0 {
		return nil, false
	}
	return &d.States[i], true
}

// StartStates returns the ids of states flagged as start, sorted.
func (d *Description) StartStates() []int {
	var ids []int
	for _, s := range d.States {
		if s.Start {
			ids = append(ids, s.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

// FinalStates returns the ids of accepting states, sorted.
func (d *Description) FinalStates() []int {
	var ids []int
	for _, s := range d.States {
		if s.Final {
			ids = append(ids, s.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

// TransitionCount returns the number of transitions including self-loops.
func (d *Description) TransitionCount() int {
	n := 0
	for _, s := range d.States {
		n += len(s.Transitions)
		if s.HasSelfLink() {
			n++
		}
	}
	return n
}

// String returns a string representation of the description.
func (d *Description) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Description: %s\n", d.Name))
	sb.WriteString(fmt.Sprintf("  States: %d\n", len(d.States)))
	sb.WriteString(fmt.Sprintf("  Start: %v\n", d.StartStates()))
	sb.WriteString(fmt.Sprintf("  Final: %v\n", d.FinalStates()))
	sb.WriteString(fmt.Sprintf("  Transitions: %d\n", d.TransitionCount()))
	return sb.String()
}
