package diagram

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultSelfLoopAngle is the loop direction used when a description does not
// specify one (≈2.30 rad, below-left of the node).
const DefaultSelfLoopAngle = 40 - 12*math.Pi

// Connector is a drawable link. The variants are *DirectLink, *SelfLink,
// *StartLink and *TemporaryLink.
type Connector interface {
	Label() string
	connector()
}

// DirectLink connects two distinct nodes. The anchor point is stored relative
// to the line between them so the link follows its nodes.
type DirectLink struct {
	NodeA, NodeB *Node
	Text         string

	ParallelPart      float64 // fraction of the way from NodeA to NodeB
	PerpendicularPart float64 // distance from the line between NodeA and NodeB
	LineAngleAdjust   float64 // added to the label angle when the link is straight
}

// NewDirectLink returns a straight link from a to b.
func NewDirectLink(a, b *Node, text string) *DirectLink {
	return &DirectLink{NodeA: a, NodeB: b, Text: text, ParallelPart: 0.5}
}

func (l *DirectLink) Label() string { return l.Text }
func (l *DirectLink) connector()    {}

// IsStraight reports whether the link is drawn as a line segment.
func (l *DirectLink) IsStraight() bool {
	return l.PerpendicularPart == 0
}

// AnchorPoint returns the absolute position of the bend control point.
func (l *DirectLink) AnchorPoint() r2.Vec {
	a, b := l.NodeA.Center(), l.NodeB.Center()
	d := r2.Sub(b, a)
	scale := r2.Norm(d)
	perp := r2.Vec{X: -d.Y, Y: d.X}
	return r2.Add(a, r2.Add(r2.Scale(l.ParallelPart, d), r2.Scale(l.PerpendicularPart/scale, perp)))
}

// SetAnchorPoint moves the bend control point to p, snapping the link back to
// a straight line when p is within SnapPadding of it.
func (l *DirectLink) SetAnchorPoint(p r2.Vec) {
	a, b := l.NodeA.Center(), l.NodeB.Center()
	d := r2.Sub(b, a)
	rel := r2.Sub(p, a)
	scale := r2.Norm(d)
	l.ParallelPart = r2.Dot(d, rel) / (scale * scale)
	l.PerpendicularPart = (d.X*rel.Y - d.Y*rel.X) / scale
	l.PerpendicularPart, l.LineAngleAdjust = snapToLine(l.ParallelPart, l.PerpendicularPart, l.LineAngleAdjust)
}

// snapToLine forces small perpendicular offsets to zero and records which side
// of the line the anchor was on. A zero offset keeps the previous adjustment.
func snapToLine(parallel, perpendicular, adjust float64) (float64, float64) {
	if parallel <= 0 || parallel >= 1 || math.Abs(perpendicular) >= SnapPadding {
		return perpendicular, adjust
	}
	if perpendicular < 0 {
		adjust = math.Pi
	} else if perpendicular > 0 {
		adjust = 0
	}
	return 0, adjust
}

// SelfLink is a loop on a single node.
type SelfLink struct {
	Node        *Node
	AnchorAngle float64 // in [-π, π]
	Text        string
}

// NewSelfLink returns a loop on n in the default direction.
func NewSelfLink(n *Node, text string) *SelfLink {
	return &SelfLink{Node: n, AnchorAngle: DefaultSelfLoopAngle, Text: text}
}

func (l *SelfLink) Label() string { return l.Text }
func (l *SelfLink) connector()    {}

// SetAnchorPoint points the loop towards p, snapping to multiples of 90°.
func (l *SelfLink) SetAnchorPoint(p r2.Vec) {
	angle := math.Atan2(p.Y-l.Node.Y, p.X-l.Node.X)
	snap := math.Round(angle/(math.Pi/2)) * (math.Pi / 2)
	if math.Abs(angle-snap) < 0.1 {
		angle = snap
	}
	l.AnchorAngle = normalizeAngle(angle)
}

// StartLink marks the initial state. It has no source node; the arrow starts
// at an offset from its node.
type StartLink struct {
	Node           *Node
	DeltaX, DeltaY float64
	Text           string
}

// NewStartLink returns a start marker entering n from the upper left.
func NewStartLink(n *Node, nodeRadius float64) *StartLink {
	l := &StartLink{Node: n, Text: "Start"}
	l.SetAnchorPoint(r2.Vec{X: n.X - nodeRadius - 5, Y: n.Y - nodeRadius - 5})
	return l
}

func (l *StartLink) Label() string { return l.Text }
func (l *StartLink) connector()    {}

// SetAnchorPoint moves the tail of the start arrow to p.
func (l *StartLink) SetAnchorPoint(p r2.Vec) {
	l.DeltaX = p.X - l.Node.X
	l.DeltaY = p.Y - l.Node.Y
}

// TemporaryLink is a link being dragged out by an editor.
type TemporaryLink struct {
	From, To r2.Vec
}

func (l *TemporaryLink) Label() string { return "" }
func (l *TemporaryLink) connector()    {}

// attachedNode returns the node a self-loop or start marker belongs to.
func attachedNode(c Connector) (*Node, bool) {
	switch l := c.(type) {
	case *SelfLink:
		return l.Node, true
	case *StartLink:
		return l.Node, true
	}
	return nil, false
}

// normalizeAngle maps a into [-π, π].
func normalizeAngle(a float64) float64 {
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
