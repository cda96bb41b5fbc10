// Package monitor keeps a rendered FSM diagram in step with the live state
// reported by the status feed.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ha1tch/fsmview/pkg/diagram"
	"github.com/ha1tch/fsmview/pkg/fsm"
	"github.com/ha1tch/fsmview/pkg/statusfeed"
)

// ErrBadStateID is returned for state bodies that are not an integer.
var ErrBadStateID = errors.New("bad state id")

// Options configures a Monitor.
type Options struct {
	Style        diagram.Style
	HistoryLimit int
	Logger       *slog.Logger
	// OnFrame is called after every render with the monitor's lock held.
	// It must not call back into the Monitor.
	OnFrame func(Snapshot)
}

// DefaultOptions returns the default style and history limit.
func DefaultOptions() Options {
	return Options{
		Style:        diagram.DefaultStyle(),
		HistoryLimit: fsm.DefaultHistoryLimit,
	}
}

// Snapshot describes the frame just rendered.
type Snapshot struct {
	Highlight fsm.HighlightState
	HasState  bool
	Status    string
	History   []fsm.Visit
	Fields    []statusfeed.Field
	Frame     int
}

// Monitor owns a diagram, its renderer and the state tracker. All methods
// are safe for concurrent use; renders are serialized.
type Monitor struct {
	mu       sync.Mutex
	diagram  *diagram.Diagram
	renderer *diagram.Renderer
	tracker  *fsm.Tracker
	fields   map[string]string
	frame    int
	onFrame  func(Snapshot)
	log      *slog.Logger
}

// New creates a monitor drawing d onto canvas. Nothing is drawn until the
// first Redraw or state update.
func New(d *diagram.Diagram, canvas diagram.Canvas, opts Options) *Monitor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		diagram:  d,
		renderer: diagram.NewRenderer(canvas, opts.Style),
		tracker:  fsm.NewTrackerWithLimit(opts.HistoryLimit),
		fields:   make(map[string]string),
		onFrame:  opts.OnFrame,
		log:      log,
	}
}

// Diagram returns the monitored diagram.
func (m *Monitor) Diagram() *diagram.Diagram {
	return m.diagram
}

// Redraw renders the current frame again, for example after a resize.
func (m *Monitor) Redraw() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.render()
}

// Relayout runs fn with the render lock held and then redraws. Use it to
// change the canvas geometry while state updates may be arriving.
func (m *Monitor) Relayout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
	m.render()
}

// ShowState highlights state id and redraws. Unknown ids are logged and
// ignored: the previous frame and repeat count are kept.
func (m *Monitor) ShowState(id int) (fsm.HighlightState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.diagram.Node(id); !ok {
		m.log.Warn("ignoring unknown state", "state", id)
		return fsm.HighlightState{}, false
	}

	hl := m.tracker.Update(id)
	m.log.Debug("state", "state", id, "repeat", hl.Repeat)
	m.render()
	return hl, true
}

// HandleState handles a StatusTypes.STATE body.
func (m *Monitor) HandleState(body string) error {
	id, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadStateID, body)
	}
	m.ShowState(id)
	return nil
}

// HandleDebug logs a debug message and shows any fields it carries.
func (m *Monitor) HandleDebug(body string) error {
	m.log.Debug(body, "source", "station")
	if fields, ok := statusfeed.ExtractFields(body); ok {
		m.PatchFields(fields)
	}
	return nil
}

// PatchFields sets display fields and redraws.
func (m *Monitor) PatchFields(fields []statusfeed.Field) {
	if len(fields) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range fields {
		m.fields[f.Name] = f.Value
	}
	m.render()
}

// Reset forgets the tracked state and fields and redraws without a highlight.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracker.Reset()
	m.fields = make(map[string]string)
	m.render()
}

// Snapshot returns the state of the last rendered frame.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Handlers returns the dispatch map for every status message type.
func (m *Monitor) Handlers() map[string]statusfeed.HandlerFunc {
	handlers := statusfeed.LogHandlers(m.log)
	handlers[statusfeed.TypeState] = m.HandleState
	handlers[statusfeed.TypeDebug] = m.HandleDebug
	return handlers
}

func (m *Monitor) render() {
	var hl *fsm.HighlightState
	if s, ok := m.tracker.State(); ok {
		hl = &s
	}
	m.renderer.Render(m.diagram, hl)
	m.frame++
	if m.onFrame != nil {
		m.onFrame(m.snapshot())
	}
}

func (m *Monitor) snapshot() Snapshot {
	hl, ok := m.tracker.State()
	fields := make([]statusfeed.Field, 0, len(m.fields))
	for name, value := range m.fields {
		fields = append(fields, statusfeed.Field{Name: name, Value: value})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	return Snapshot{
		Highlight: hl,
		HasState:  ok,
		Status:    m.tracker.Status(),
		History:   m.tracker.History(),
		Fields:    fields,
		Frame:     m.frame,
	}
}
