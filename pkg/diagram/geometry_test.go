package diagram

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-9

func node(id int, x, y float64) *Node {
	return &Node{ID: id, X: x, Y: y}
}

func TestStraightLinkEndpoints(t *testing.T) {
	a, b := node(0, 0, 0), node(1, 200, 0)
	g := NewResolver(50).Resolve(NewDirectLink(a, b, ""))

	if g.HasArc {
		t.Fatal("straight link resolved as arc")
	}
	if d := r2.Norm(r2.Sub(g.Start, a.Center())); math.Abs(d-50) > eps {
		t.Errorf("start is %.4f from node A, want 50", d)
	}
	if d := r2.Norm(r2.Sub(g.End, b.Center())); math.Abs(d-50) > eps {
		t.Errorf("end is %.4f from node B, want 50", d)
	}
	if math.Abs(g.Start.Y) > eps || math.Abs(g.End.Y) > eps {
		t.Errorf("endpoints not colinear with centers: %v %v", g.Start, g.End)
	}
	if math.Abs(g.Start.X-50) > eps || math.Abs(g.End.X-150) > eps {
		t.Errorf("endpoints = %v %v, want (50,0) (150,0)", g.Start, g.End)
	}
}

func TestStraightLinkDiagonal(t *testing.T) {
	a, b := node(0, 10, 20), node(1, 130, 180)
	g := NewResolver(50).Resolve(NewDirectLink(a, b, ""))

	ab := r2.Sub(b.Center(), a.Center())
	for name, p := range map[string]r2.Vec{"start": g.Start, "end": g.End} {
		rel := r2.Sub(p, a.Center())
		if cross := ab.X*rel.Y - ab.Y*rel.X; math.Abs(cross) > 1e-6 {
			t.Errorf("%s %v is off the center line (cross=%g)", name, p, cross)
		}
	}
}

func TestCurvedLinkCircle(t *testing.T) {
	a, b := node(0, 0, 0), node(1, 200, 0)
	l := NewDirectLink(a, b, "")
	l.PerpendicularPart = 50

	anchor := l.AnchorPoint()
	if math.Abs(anchor.X-100) > eps || math.Abs(anchor.Y-50) > eps {
		t.Fatalf("anchor = %v, want (100,50)", anchor)
	}

	g := NewResolver(50).Resolve(l)
	if !g.HasArc || !g.Reversed {
		t.Fatalf("expected reversed arc, got %+v", g)
	}
	if math.Abs(g.Center.X-100) > eps || math.Abs(g.Center.Y+75) > eps {
		t.Errorf("center = %v, want (100,-75)", g.Center)
	}
	if math.Abs(g.Radius-125) > eps {
		t.Errorf("radius = %.4f, want 125", g.Radius)
	}

	// arc ends sit on the node boundaries (arc length R from the centers)
	for name, tc := range map[string]struct{ p, c r2.Vec }{
		"start": {g.Start, a.Center()},
		"end":   {g.End, b.Center()},
	} {
		if d := r2.Norm(r2.Sub(tc.p, tc.c)); math.Abs(d-50) > 1 {
			t.Errorf("%s is %.3f from its node, want ~50", name, d)
		}
	}
}

func TestCurvedLinkNotReversed(t *testing.T) {
	a, b := node(0, 0, 0), node(1, 200, 0)
	l := NewDirectLink(a, b, "")
	l.PerpendicularPart = -50

	g := NewResolver(50).Resolve(l)
	if g.Reversed {
		t.Error("negative perpendicular part should not be reversed")
	}
	if math.Abs(g.Center.Y-75) > eps {
		t.Errorf("center = %v, want (100,75)", g.Center)
	}
	if g.StartAngle >= g.EndAngle {
		t.Errorf("clockwise arc should run %f -> %f upwards", g.StartAngle, g.EndAngle)
	}
}

func TestSelfLinkGeometry(t *testing.T) {
	n := node(0, 100, 100)
	l := &SelfLink{Node: n, AnchorAngle: 0}
	g := NewResolver(50).Resolve(l)

	if math.Abs(g.Center.X-175) > eps || math.Abs(g.Center.Y-100) > eps {
		t.Errorf("loop center = %v, want (175,100)", g.Center)
	}
	if math.Abs(g.Radius-37.5) > eps {
		t.Errorf("loop radius = %.3f, want 37.5", g.Radius)
	}
	if math.Abs(g.StartAngle+0.8*math.Pi) > eps || math.Abs(g.EndAngle-0.8*math.Pi) > eps {
		t.Errorf("sweep = [%f, %f], want ±0.8π", g.StartAngle, g.EndAngle)
	}
}

func TestStartLinkGeometry(t *testing.T) {
	n := node(0, 100, 100)
	l := NewStartLink(n, 50)
	if l.DeltaX != -55 || l.DeltaY != -55 {
		t.Fatalf("default delta = (%g,%g), want (-55,-55)", l.DeltaX, l.DeltaY)
	}

	l.SetAnchorPoint(r2.Vec{X: 0, Y: 100})
	g := NewResolver(50).Resolve(l)
	if g.Start != (r2.Vec{X: 0, Y: 100}) {
		t.Errorf("start = %v, want (0,100)", g.Start)
	}
	if math.Abs(g.End.X-50) > eps || math.Abs(g.End.Y-100) > eps {
		t.Errorf("end = %v, want (50,100)", g.End)
	}
}

func TestTemporaryLinkGeometry(t *testing.T) {
	l := &TemporaryLink{From: r2.Vec{X: 1, Y: 2}, To: r2.Vec{X: 3, Y: 4}}
	g := NewResolver(50).Resolve(l)
	if g.HasArc || g.Start != l.From || g.End != l.To {
		t.Errorf("temporary link geometry = %+v", g)
	}
}

func TestSnapToStraight(t *testing.T) {
	l := NewDirectLink(node(0, 0, 0), node(1, 200, 0), "")

	l.SetAnchorPoint(r2.Vec{X: 100, Y: -3})
	if l.PerpendicularPart != 0 || l.LineAngleAdjust != math.Pi {
		t.Fatalf("after snap: perp=%g adjust=%g, want 0 and π", l.PerpendicularPart, l.LineAngleAdjust)
	}

	// same input again: still straight, adjustment unchanged
	l.SetAnchorPoint(r2.Vec{X: 100, Y: -3})
	if l.PerpendicularPart != 0 || l.LineAngleAdjust != math.Pi {
		t.Errorf("second snap: perp=%g adjust=%g", l.PerpendicularPart, l.LineAngleAdjust)
	}

	// snapping an already straight link changes nothing
	perp, adjust := snapToLine(l.ParallelPart, l.PerpendicularPart, l.LineAngleAdjust)
	if perp != 0 || adjust != math.Pi {
		t.Errorf("re-snap of straight link: perp=%g adjust=%g", perp, adjust)
	}

	l.SetAnchorPoint(r2.Vec{X: 100, Y: 4})
	if l.PerpendicularPart != 0 || l.LineAngleAdjust != 0 {
		t.Errorf("positive side: perp=%g adjust=%g, want 0 and 0", l.PerpendicularPart, l.LineAngleAdjust)
	}
}

func TestSnapLimits(t *testing.T) {
	tests := []struct {
		name     string
		anchor   r2.Vec
		wantPerp float64
	}{
		{"outside padding", r2.Vec{X: 100, Y: 20}, 20},
		{"before node A", r2.Vec{X: -10, Y: 2}, 2},
		{"past node B", r2.Vec{X: 210, Y: 2}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewDirectLink(node(0, 0, 0), node(1, 200, 0), "")
			l.SetAnchorPoint(tc.anchor)
			if math.Abs(l.PerpendicularPart-tc.wantPerp) > eps {
				t.Errorf("perp = %g, want %g", l.PerpendicularPart, tc.wantPerp)
			}
		})
	}
}

func TestAnchorRoundTrip(t *testing.T) {
	l := NewDirectLink(node(0, 10, 10), node(1, 110, 210), "")
	want := r2.Vec{X: 30, Y: 150}
	l.SetAnchorPoint(want)
	got := l.AnchorPoint()
	if r2.Norm(r2.Sub(got, want)) > 1e-9 {
		t.Errorf("AnchorPoint() = %v, want %v", got, want)
	}
}

func TestSelfLinkSetAnchorPoint(t *testing.T) {
	n := node(0, 0, 0)
	l := NewSelfLink(n, "")

	l.SetAnchorPoint(r2.Vec{X: 10, Y: 0.5})
	if l.AnchorAngle != 0 {
		t.Errorf("angle = %f, want snap to 0", l.AnchorAngle)
	}

	l.SetAnchorPoint(r2.Vec{X: 3, Y: 10})
	if math.Abs(l.AnchorAngle-math.Atan2(10, 3)) > eps {
		t.Errorf("angle = %f, want unsnapped %f", l.AnchorAngle, math.Atan2(10, 3))
	}
	if l.AnchorAngle < -math.Pi || l.AnchorAngle > math.Pi {
		t.Errorf("angle %f out of range", l.AnchorAngle)
	}
}

func TestDefaultSelfLoopAngleInRange(t *testing.T) {
	if DefaultSelfLoopAngle < -math.Pi || DefaultSelfLoopAngle > math.Pi {
		t.Errorf("DefaultSelfLoopAngle = %f out of [-π, π]", DefaultSelfLoopAngle)
	}
	if math.Abs(normalizeAngle(40)-DefaultSelfLoopAngle) > eps {
		t.Errorf("DefaultSelfLoopAngle = %f, want %f", DefaultSelfLoopAngle, normalizeAngle(40))
	}
}

func TestCircleFromThreePoints(t *testing.T) {
	c, r := circleFromThreePoints(r2.Vec{X: 1, Y: 0}, r2.Vec{X: 0, Y: 1}, r2.Vec{X: -1, Y: 0})
	if r2.Norm(c) > eps || math.Abs(r-1) > eps {
		t.Errorf("circle = %v r=%f, want origin r=1", c, r)
	}
}

func TestArcSweep(t *testing.T) {
	tests := []struct {
		name          string
		start, end    float64
		anticlockwise bool
		want          float64
	}{
		{"full circle", 0, 2 * math.Pi, false, 2 * math.Pi},
		{"quarter", 0, math.Pi / 2, false, math.Pi / 2},
		{"clockwise wrap", 3, -3, false, 2*math.Pi - 6},
		{"anticlockwise", math.Pi / 2, 0, true, -math.Pi / 2},
		{"anticlockwise wrap", -2.5, 2.5, true, -(2*math.Pi - 5)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ArcSweep(tc.start, tc.end, tc.anticlockwise); math.Abs(got-tc.want) > eps {
				t.Errorf("ArcSweep = %f, want %f", got, tc.want)
			}
		})
	}
}
