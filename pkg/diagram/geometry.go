package diagram

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Geometry is the resolved shape of a connector. Arcs are drawn from
// StartAngle to EndAngle around Center, anticlockwise when Reversed.
type Geometry struct {
	HasArc     bool
	Start, End r2.Vec

	StartAngle, EndAngle float64
	Center               r2.Vec
	Radius               float64
	Reversed             bool
}

// reverseScale is +1 for reversed arcs and -1 otherwise.
func (g Geometry) reverseScale() float64 {
	if g.Reversed {
		return 1
	}
	return -1
}

// Resolver computes connector geometry for a diagram with a fixed node radius.
type Resolver struct {
	NodeRadius float64
	HitPadding float64
}

// NewResolver returns a resolver using the default hit padding.
func NewResolver(nodeRadius float64) Resolver {
	return Resolver{NodeRadius: nodeRadius, HitPadding: HitPadding}
}

// Resolve computes endpoints and, for curved connectors, the arc.
func (r Resolver) Resolve(c Connector) Geometry {
	switch l := c.(type) {
	case *DirectLink:
		return r.resolveDirect(l)
	case *SelfLink:
		return r.resolveSelf(l)
	case *StartLink:
		start := r2.Add(l.Node.Center(), r2.Vec{X: l.DeltaX, Y: l.DeltaY})
		return Geometry{Start: start, End: l.Node.ClosestPointOnCircle(start, r.NodeRadius)}
	case *TemporaryLink:
		return Geometry{Start: l.From, End: l.To}
	}
	return Geometry{}
}

func (r Resolver) resolveDirect(l *DirectLink) Geometry {
	a, b := l.NodeA.Center(), l.NodeB.Center()
	if l.IsStraight() {
		mid := r2.Scale(0.5, r2.Add(a, b))
		return Geometry{
			Start: l.NodeA.ClosestPointOnCircle(mid, r.NodeRadius),
			End:   l.NodeB.ClosestPointOnCircle(mid, r.NodeRadius),
		}
	}

	center, radius := circleFromThreePoints(a, b, l.AnchorPoint())
	g := Geometry{
		HasArc:   true,
		Center:   center,
		Radius:   radius,
		Reversed: l.PerpendicularPart > 0,
	}
	rs := g.reverseScale()
	g.StartAngle = math.Atan2(a.Y-center.Y, a.X-center.X) - rs*r.NodeRadius/radius
	g.EndAngle = math.Atan2(b.Y-center.Y, b.X-center.X) + rs*r.NodeRadius/radius
	g.Start = pointOnCircle(center, radius, g.StartAngle)
	g.End = pointOnCircle(center, radius, g.EndAngle)
	return g
}

func (r Resolver) resolveSelf(l *SelfLink) Geometry {
	center := r2.Add(l.Node.Center(), r2.Scale(1.5*r.NodeRadius, unitAt(l.AnchorAngle)))
	radius := 0.75 * r.NodeRadius
	g := Geometry{
		HasArc:     true,
		Center:     center,
		Radius:     radius,
		StartAngle: l.AnchorAngle - math.Pi*0.8,
		EndAngle:   l.AnchorAngle + math.Pi*0.8,
	}
	g.Start = pointOnCircle(center, radius, g.StartAngle)
	g.End = pointOnCircle(center, radius, g.EndAngle)
	return g
}

// circleFromThreePoints returns the circumcircle of p1, p2 and p3.
func circleFromThreePoints(p1, p2, p3 r2.Vec) (r2.Vec, float64) {
	s1 := p1.X*p1.X + p1.Y*p1.Y
	s2 := p2.X*p2.X + p2.Y*p2.Y
	s3 := p3.X*p3.X + p3.Y*p3.Y

	a := det(p1.X, p1.Y, 1, p2.X, p2.Y, 1, p3.X, p3.Y, 1)
	bx := -det(s1, p1.Y, 1, s2, p2.Y, 1, s3, p3.Y, 1)
	by := det(s1, p1.X, 1, s2, p2.X, 1, s3, p3.X, 1)
	c := -det(s1, p1.X, p1.Y, s2, p2.X, p2.Y, s3, p3.X, p3.Y)

	center := r2.Vec{X: -bx / (2 * a), Y: -by / (2 * a)}
	return center, math.Sqrt(bx*bx+by*by-4*a*c) / (2 * math.Abs(a))
}

// det is the determinant of the 3x3 matrix given row by row.
func det(a, b, c, d, e, f, g, h, i float64) float64 {
	return a*e*i + b*f*g + c*d*h - a*f*h - b*d*i - c*e*g
}

func unitAt(angle float64) r2.Vec {
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

func pointOnCircle(center r2.Vec, radius, angle float64) r2.Vec {
	return r2.Add(center, r2.Scale(radius, unitAt(angle)))
}
