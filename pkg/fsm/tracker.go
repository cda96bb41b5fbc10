package fsm

import (
	"fmt"
	"strings"
)

// DefaultHistoryLimit bounds the number of visits a Tracker remembers.
const DefaultHistoryLimit = 256

// HighlightState is what the renderer needs to draw the current state.
type HighlightState struct {
	Current     int
	Previous    int // state reported by the update before this one
	HasPrevious bool
	Repeat      int // consecutive updates reporting Current, at least 1
}

// Visit records a run of consecutive updates reporting the same state.
type Visit struct {
	State int
	Count int
}

// Tracker follows state updates from the live controller and counts
// consecutive repeats of the same state.
type Tracker struct {
	prev    int
	hasPrev bool
	repeat  int
	last    HighlightState
	history []Visit
	limit   int
}

// NewTracker creates a tracker with the default history limit.
func NewTracker() *Tracker {
	return NewTrackerWithLimit(DefaultHistoryLimit)
}

// NewTrackerWithLimit creates a tracker remembering at most limit visits.
// A limit below one keeps no history.
func NewTrackerWithLimit(limit int) *Tracker {
	return &Tracker{
		history: make([]Visit, 0),
		limit:   limit,
	}
}

// Update records that the controller reported state id.
func (t *Tracker) Update(id int) HighlightState {
	hl := HighlightState{
		Current:     id,
		Previous:    t.prev,
		HasPrevious: t.hasPrev,
	}

	if t.hasPrev && t.prev == id {
		t.repeat++
		if n := len(t.history); n > 0 {
			t.history[n-1].Count = t.repeat
		}
	} else {
		t.repeat = 1
		t.record(Visit{State: id, Count: 1})
	}

	t.prev = id
	t.hasPrev = true
	hl.Repeat = t.repeat
	t.last = hl
	return hl
}

func (t *Tracker) record(v Visit) {
	if t.limit < 1 {
		return
	}
	if len(t.history) >= t.limit {
		copy(t.history, t.history[1:])
		t.history = t.history[:len(t.history)-1]
	}
	t.history = append(t.history, v)
}

// State returns the latest highlight state, or false before the first update.
func (t *Tracker) State() (HighlightState, bool) {
	return t.last, t.hasPrev
}

// Reset forgets all updates.
func (t *Tracker) Reset() {
	t.prev = 0
	t.hasPrev = false
	t.repeat = 0
	t.last = HighlightState{}
	t.history = make([]Visit, 0)
}

// History returns the recorded visits, oldest first.
func (t *Tracker) History() []Visit {
	out := make([]Visit, len(t.history))
	copy(out, t.history)
	return out
}

// Status returns a one-line status string for the current state.
func (t *Tracker) Status() string {
	if !t.hasPrev {
		return "State: -"
	}
	status := fmt.Sprintf("State: %d", t.prev)
	if t.repeat > 1 {
		status += fmt.Sprintf(" (x%d)", t.repeat)
	}
	return status
}

// FormatHistory renders visits as "1 -> 2x3 -> 1".
func FormatHistory(visits []Visit) string {
	parts := make([]string, 0, len(visits))
	for _, v := range visits {
		if v.Count > 1 {
			parts = append(parts, fmt.Sprintf("%dx%d", v.State, v.Count))
		} else {
			parts = append(parts, fmt.Sprintf("%d", v.State))
		}
	}
	return strings.Join(parts, " -> ")
}
