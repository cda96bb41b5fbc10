package diagram

import (
	"image/color"
	"math"
	"unicode/utf8"

	"gonum.org/v1/gonum/spatial/r2"
)

// Canvas is a 2D drawing surface. Coordinates are diagram units with y
// growing downwards; angles follow the same convention, so increasing angles
// run clockwise on screen.
type Canvas interface {
	TextMeasurer

	Clear(bg color.Color)
	StrokeArc(center r2.Vec, radius, start, end float64, anticlockwise bool, width float64, c color.Color)
	StrokeLine(from, to r2.Vec, width float64, c color.Color)
	FillPolygon(points []r2.Vec, c color.Color)
	FillCircle(center r2.Vec, radius float64, c color.Color)
	// FillText draws text with its left end of the baseline at (x, y).
	FillText(text string, x, y float64, c color.Color)
}

// Style holds the colours and line widths used by the Renderer.
type Style struct {
	Background   color.Color
	Stroke       color.Color
	Text         color.Color
	Highlight    color.Color
	Badge        color.Color
	BadgeOutline color.Color
	BadgeText    color.Color

	LineWidth         float64
	BadgeOutlineWidth float64
}

// DefaultStyle returns black-on-white with a yellow highlight and red badge.
func DefaultStyle() Style {
	return Style{
		Background:        color.White,
		Stroke:            color.Black,
		Text:              color.Black,
		Highlight:         color.NRGBA{R: 255, G: 255, A: 77},
		Badge:             color.NRGBA{R: 255, A: 255},
		BadgeOutline:      color.Black,
		BadgeText:         color.Black,
		LineWidth:         1,
		BadgeOutlineWidth: 0.5,
	}
}

// ArcSweep returns the signed angle travelled by an arc drawn from start to
// end: positive clockwise, negative anticlockwise, at most one full turn.
func ArcSweep(start, end float64, anticlockwise bool) float64 {
	const turn = 2 * math.Pi
	if !anticlockwise {
		if end-start >= turn {
			return turn
		}
		return positiveMod(end-start, turn)
	}
	if start-end >= turn {
		return -turn
	}
	return -positiveMod(start-end, turn)
}

func positiveMod(a, m float64) float64 {
	a = math.Mod(a, m)
	if a < 0 {
		a += m
	}
	return a
}

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpClear OpKind = iota
	OpArc
	OpLine
	OpPolygon
	OpCircle
	OpText
)

// Op is one recorded drawing call.
type Op struct {
	Kind          OpKind
	Points        []r2.Vec // line endpoints or polygon vertices
	Center        r2.Vec
	Radius        float64
	Start, End    float64
	Anticlockwise bool
	Text          string
	X, Y          float64
	Color         color.Color
}

// Recorder is a Canvas that records drawing calls instead of drawing.
type Recorder struct {
	Ops       []Op
	CharWidth float64 // width of one rune for MeasureText
}

// NewRecorder returns a recorder measuring text at 8 units per rune.
func NewRecorder() *Recorder {
	return &Recorder{CharWidth: 8}
}

func (r *Recorder) MeasureText(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.CharWidth
}

func (r *Recorder) Clear(bg color.Color) {
	r.Ops = []Op{{Kind: OpClear, Color: bg}}
}

func (r *Recorder) StrokeArc(center r2.Vec, radius, start, end float64, anticlockwise bool, _ float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpArc, Center: center, Radius: radius, Start: start, End: end, Anticlockwise: anticlockwise, Color: c})
}

func (r *Recorder) StrokeLine(from, to r2.Vec, _ float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Points: []r2.Vec{from, to}, Color: c})
}

func (r *Recorder) FillPolygon(points []r2.Vec, c color.Color) {
	pts := make([]r2.Vec, len(points))
	copy(pts, points)
	r.Ops = append(r.Ops, Op{Kind: OpPolygon, Points: pts, Color: c})
}

func (r *Recorder) FillCircle(center r2.Vec, radius float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, Center: center, Radius: radius, Color: c})
}

func (r *Recorder) FillText(text string, x, y float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Text: text, X: x, Y: y, Color: c})
}

// Filter returns the recorded operations of the given kind.
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every string drawn, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Filter(OpText) {
		out = append(out, op.Text)
	}
	return out
}
