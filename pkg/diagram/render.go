package diagram

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ha1tch/fsmview/pkg/fsm"
)

const (
	acceptInset     = 6   // inner circle inset for accept states
	highlightScale  = 1.1 // highlight disc radius relative to the node radius
	badgeRadius     = 12  // repeat counter badge radius
	badgeInset      = 18  // badge center offset from the disc's upper-right
	arrowLength     = 8   // arrow head length
	arrowHalfWidth  = 5   // arrow head half width
	selfArrowOffset = 0.4 // self-loop arrow angle past the arc end, in turns of π
)

// Renderer draws diagrams onto a Canvas. Every call redraws the whole frame.
type Renderer struct {
	Canvas Canvas
	Style  Style

	placer TextPlacer
}

// NewRenderer returns a renderer drawing onto c.
func NewRenderer(c Canvas, style Style) *Renderer {
	return &Renderer{
		Canvas: c,
		Style:  style,
		placer: TextPlacer{Measurer: c},
	}
}

// Render clears the canvas and draws d. When hl is non-nil and names a node
// of d, that node is highlighted with the repeat counter; unknown ids draw no
// highlight.
func (r *Renderer) Render(d *Diagram, hl *fsm.HighlightState) {
	res := d.Resolver()
	r.Canvas.Clear(r.Style.Background)

	for _, n := range d.Nodes {
		r.drawNode(n, d.NodeRadius)
		for _, c := range d.Connectors {
			if owner, ok := attachedNode(c); ok && owner == n {
				r.drawConnector(res, c)
			}
		}
	}

	for _, c := range d.Connectors {
		if _, ok := attachedNode(c); !ok {
			r.drawConnector(res, c)
		}
	}

	if hl != nil {
		if n, ok := d.Node(hl.Current); ok {
			r.drawHighlight(n, d.NodeRadius, hl.Repeat)
		}
	}
}

func (r *Renderer) drawNode(n *Node, radius float64) {
	r.Canvas.StrokeArc(n.Center(), radius, 0, 2*math.Pi, false, r.Style.LineWidth, r.Style.Stroke)
	r.drawText(n.Label, n.Center(), nil)
	if n.Accept {
		r.Canvas.StrokeArc(n.Center(), radius-acceptInset, 0, 2*math.Pi, false, r.Style.LineWidth, r.Style.Stroke)
	}
}

func (r *Renderer) drawConnector(res Resolver, c Connector) {
	switch l := c.(type) {
	case *DirectLink:
		r.drawDirectLink(res, l)
	case *SelfLink:
		r.drawSelfLink(res, l)
	case *StartLink:
		r.drawStartLink(res, l)
	case *TemporaryLink:
		r.Canvas.StrokeLine(l.To, l.From, r.Style.LineWidth, r.Style.Stroke)
		r.drawArrow(l.To, math.Atan2(l.To.Y-l.From.Y, l.To.X-l.From.X))
	}
}

func (r *Renderer) drawDirectLink(res Resolver, l *DirectLink) {
	g := res.Resolve(l)

	if !g.HasArc {
		r.Canvas.StrokeLine(g.Start, g.End, r.Style.LineWidth, r.Style.Stroke)
		r.drawArrow(g.End, math.Atan2(g.End.Y-g.Start.Y, g.End.X-g.Start.X))
		mid := r2.Scale(0.5, r2.Add(g.Start, g.End))
		angle := math.Atan2(g.End.X-g.Start.X, g.Start.Y-g.End.Y) + l.LineAngleAdjust
		r.drawText(l.Text, mid, &angle)
		return
	}

	r.Canvas.StrokeArc(g.Center, g.Radius, g.StartAngle, g.EndAngle, g.Reversed, r.Style.LineWidth, r.Style.Stroke)
	r.drawArrow(g.End, g.EndAngle-g.reverseScale()*(math.Pi/2))

	start, end := g.StartAngle, g.EndAngle
	if end < start {
		end += 2 * math.Pi
	}
	angle := (start + end) / 2
	if g.Reversed {
		angle += math.Pi
	}
	r.drawText(l.Text, pointOnCircle(g.Center, g.Radius, angle), &angle)
}

func (r *Renderer) drawSelfLink(res Resolver, l *SelfLink) {
	g := res.Resolve(l)
	r.Canvas.StrokeArc(g.Center, g.Radius, g.StartAngle, g.EndAngle, false, r.Style.LineWidth, r.Style.Stroke)

	// label on the side of the loop farthest from the node
	angle := l.AnchorAngle
	r.drawText(l.Text, pointOnCircle(g.Center, g.Radius, angle), &angle)
	r.drawArrow(g.End, g.EndAngle+math.Pi*selfArrowOffset)
}

func (r *Renderer) drawStartLink(res Resolver, l *StartLink) {
	g := res.Resolve(l)
	r.Canvas.StrokeLine(g.Start, g.End, r.Style.LineWidth, r.Style.Stroke)

	angle := math.Atan2(g.Start.Y-g.End.Y, g.Start.X-g.End.X)
	r.drawText(l.Text, g.Start, &angle)
	r.drawArrow(g.End, math.Atan2(-l.DeltaY, -l.DeltaX))
}

func (r *Renderer) drawArrow(tip r2.Vec, angle float64) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	r.Canvas.FillPolygon([]r2.Vec{
		tip,
		{X: tip.X - arrowLength*dx + arrowHalfWidth*dy, Y: tip.Y - arrowLength*dy - arrowHalfWidth*dx},
		{X: tip.X - arrowLength*dx - arrowHalfWidth*dy, Y: tip.Y - arrowLength*dy + arrowHalfWidth*dx},
	}, r.Style.Stroke)
}

func (r *Renderer) drawText(text string, anchor r2.Vec, angle *float64) {
	if text == "" {
		return
	}
	ti := r.placer.Place(text, anchor, angle)
	r.Canvas.FillText(ti.Text, ti.X, ti.Y, r.Style.Text)
}

func (r *Renderer) drawHighlight(n *Node, nodeRadius float64, repeat int) {
	radius := highlightScale * nodeRadius
	r.Canvas.FillCircle(n.Center(), radius, r.Style.Highlight)

	badge := r2.Vec{X: n.X + radius - badgeInset, Y: n.Y - radius + badgeInset}
	r.Canvas.FillCircle(badge, badgeRadius, r.Style.Badge)
	r.Canvas.StrokeArc(badge, badgeRadius, 0, 2*math.Pi, false, r.Style.BadgeOutlineWidth, r.Style.BadgeOutline)

	counter := strconv.Itoa(repeat)
	width := r.Canvas.MeasureText(counter)
	r.Canvas.FillText(counter, math.Round(badge.X-width/2), math.Round(badge.Y)+6, r.Style.BadgeText)
}
