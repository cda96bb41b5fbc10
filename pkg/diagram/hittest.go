package diagram

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Contains reports whether (x, y) lies on connector c within the hit padding.
func (r Resolver) Contains(c Connector, x, y float64) bool {
	p := r2.Vec{X: x, Y: y}
	g := r.Resolve(c)

	// The whole loop circle is clickable, not just the drawn sweep.
	if _, ok := c.(*SelfLink); ok {
		return math.Abs(r2.Norm(r2.Sub(p, g.Center))-g.Radius) < r.HitPadding
	}
	if g.HasArc {
		return r.onArc(g, p)
	}
	return r.onSegment(g.Start, g.End, p)
}

func (r Resolver) onArc(g Geometry, p r2.Vec) bool {
	d := r2.Sub(p, g.Center)
	if math.Abs(r2.Norm(d)-g.Radius) >= r.HitPadding {
		return false
	}

	angle := math.Atan2(d.Y, d.X)
	start, end := g.StartAngle, g.EndAngle
	if g.Reversed {
		start, end = end, start
	}
	if end < start {
		end += 2 * math.Pi
	}
	if angle < start {
		angle += 2 * math.Pi
	} else if angle > end {
		angle -= 2 * math.Pi
	}
	return angle > start && angle < end
}

func (r Resolver) onSegment(start, end, p r2.Vec) bool {
	d := r2.Sub(end, start)
	length := r2.Norm(d)
	if length == 0 {
		return false
	}
	rel := r2.Sub(p, start)
	percent := r2.Dot(d, rel) / (length * length)
	distance := (d.X*rel.Y - d.Y*rel.X) / length
	return percent > 0 && percent < 1 && math.Abs(distance) < r.HitPadding
}
