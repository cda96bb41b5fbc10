package termview

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/fsmview/pkg/fsm"
	"github.com/ha1tch/fsmview/pkg/monitor"
)

// ErrQuit is returned by Run when the user quits.
var ErrQuit = errors.New("quit")

// Styles
var (
	styleSidebar  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleStatusHi = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy).Bold(true)
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const (
	defaultSidebarWidth = 30
	minCanvasWidth      = 40
)

// quitEvent asks the event loop to stop.
type quitEvent struct{}

// Binding is an extra key handled by Run.
type Binding struct {
	Key    rune
	Help   string // shown in the status bar, e.g. "ping"
	Action func()
}

// View lays out a diagram canvas with a sidebar and a status bar.
type View struct {
	Screen       tcell.Screen
	Canvas       *Canvas
	Title        string
	SidebarWidth int
	Bindings     []Binding

	latest atomic.Pointer[monitor.Snapshot]
}

// NewView creates a view on s.
func NewView(s tcell.Screen, title string) *View {
	v := &View{
		Screen:       s,
		Canvas:       NewCanvas(s),
		Title:        title,
		SidebarWidth: defaultSidebarWidth,
	}
	v.Layout()
	return v
}

// Layout sizes the canvas to the screen, leaving room for the sidebar
// (dropped on narrow screens) and the status bar.
func (v *View) Layout() {
	w, h := v.Screen.Size()
	side := v.sidebarWidth(w)
	v.Canvas.Area = Rect{X: 0, Y: 0, W: w - side, H: max(h-1, 0)}
}

func (v *View) sidebarWidth(w int) int {
	if w-v.SidebarWidth < minCanvasWidth {
		return 0
	}
	return v.SidebarWidth
}

// Notify records s for the event loop and wakes it. It is meant to be used
// as the monitor's OnFrame hook.
func (v *View) Notify(s monitor.Snapshot) {
	v.latest.Store(&s)
	v.Screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Draw paints the sidebar and status bar for s.
func (v *View) Draw(s monitor.Snapshot) {
	w, h := v.Screen.Size()
	if side := v.sidebarWidth(w); side > 0 {
		v.drawSidebar(w-side, h-1, side, s)
	}
	v.drawStatusBar(w, h, s)
}

func (v *View) drawSidebar(x, h, width int, s monitor.Snapshot) {
	for row := 0; row < h; row++ {
		v.Screen.SetContent(x, row, '│', nil, styleBorder)
		for col := x + 1; col < x+width; col++ {
			v.Screen.SetContent(col, row, ' ', nil, styleSidebar)
		}
	}

	x += 2
	inner := width - 3
	y := 0

	// Title
	if v.Title != "" {
		v.drawString(x, y, truncate(v.Title, inner), styleSidebarH)
		y += 2
	}

	v.drawString(x, y, truncate(s.Status, inner), styleSidebar)
	y += 2

	// Fields
	if len(s.Fields) > 0 {
		v.drawString(x, y, "Fields:", styleSidebarH)
		y++
		for _, f := range s.Fields {
			if y >= h-1 {
				v.drawString(x, y, "  ...", styleSidebar)
				return
			}
			v.drawString(x, y, truncate(fmt.Sprintf("  %s: %s", f.Name, f.Value), inner), styleSidebar)
			y++
		}
		y++
	}

	// History, newest first
	if len(s.History) > 0 && y < h {
		v.drawString(x, y, "History:", styleSidebarH)
		y++
		for i := len(s.History) - 1; i >= 0 && y < h; i-- {
			line := "  " + fsm.FormatHistory(s.History[i:i+1])
			v.drawString(x, y, truncate(line, inner), styleSidebar)
			y++
		}
	}
}

func (v *View) drawStatusBar(w, h int, s monitor.Snapshot) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		v.Screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	v.drawString(1, y, truncate(v.Title, 30), styleStatus)

	status := s.Status
	style := styleStatus
	if s.HasState && s.Highlight.Repeat > 1 {
		style = styleStatusHi
	}
	v.drawString(w/2-runewidth.StringWidth(status)/2, y, status, style)

	help := ""
	for _, b := range v.Bindings {
		help += fmt.Sprintf("%c %s  ", b.Key, b.Help)
	}
	help += "r reset  q quit"
	v.drawString(w-runewidth.StringWidth(help)-1, y, help, styleStatus)
}

func (v *View) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.Screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// Run fits the diagram, draws the first frame and handles terminal events
// until ctx is cancelled (returns nil) or the user quits (returns ErrQuit).
// The monitor's OnFrame hook must call Notify.
func (v *View) Run(ctx context.Context, m *monitor.Monitor) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			v.Screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
		case <-done:
		}
	}()

	m.Relayout(func() {
		v.Layout()
		v.Canvas.Fit(m.Diagram())
	})

	for {
		if ctx.Err() != nil {
			return nil
		}
		switch ev := v.Screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			m.Relayout(func() {
				v.Layout()
				v.Canvas.Fit(m.Diagram())
				v.Screen.Sync()
			})
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
				return ErrQuit
			case ev.Rune() == 'r':
				m.Reset()
			default:
				for _, b := range v.Bindings {
					if ev.Key() == tcell.KeyRune && ev.Rune() == b.Key {
						b.Action()
					}
				}
			}
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(quitEvent); ok {
				return nil
			}
			if s := v.latest.Load(); s != nil {
				v.Draw(*s)
			}
			v.Screen.Show()
		}
	}
}
