// Package diagram resolves and draws FSM diagrams: connector geometry, hit
// testing, label placement and the current-state highlight.
package diagram

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ha1tch/fsmview/pkg/fsm"
)

const (
	DefaultNodeRadius = 50.0
	HitPadding        = 6.0 // tolerance for pointer hits on a connector
	SnapPadding       = 6.0 // tolerance for snapping a bent link straight

	// BidirectionalBend is the perpendicular offset given to each link of a
	// pair that runs both ways between two nodes.
	BidirectionalBend = 30.0
)

// ErrCoincidentNodes is returned when two nodes share a center.
var ErrCoincidentNodes = errors.New("coincident node centers")

// Node is a state drawn as a circle.
type Node struct {
	ID     int
	X, Y   float64
	Label  string
	Accept bool
}

// Center returns the node position as a vector.
func (n *Node) Center() r2.Vec {
	return r2.Vec{X: n.X, Y: n.Y}
}

// ClosestPointOnCircle returns the point on the node boundary nearest to p.
func (n *Node) ClosestPointOnCircle(p r2.Vec, radius float64) r2.Vec {
	d := r2.Sub(p, n.Center())
	scale := r2.Norm(d)
	return r2.Add(n.Center(), r2.Scale(radius/scale, d))
}

// Contains reports whether p lies inside the node circle.
func (n *Node) Contains(p r2.Vec, radius float64) bool {
	d := r2.Sub(p, n.Center())
	return r2.Dot(d, d) < radius*radius
}

// Diagram is an immutable snapshot of nodes and connectors.
type Diagram struct {
	Name       string
	NodeRadius float64
	Nodes      []*Node
	Connectors []Connector

	index map[int]*Node
}

// New assembles a diagram from nodes and connectors. Nodes must have
// distinct centers.
func New(name string, radius float64, nodes []*Node, connectors []Connector) (*Diagram, error) {
	if radius <= 0 {
		radius = DefaultNodeRadius
	}
	d := &Diagram{
		Name:       name,
		NodeRadius: radius,
		Nodes:      nodes,
		Connectors: connectors,
		index:      make(map[int]*Node, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := d.index[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %d", fsm.ErrInvalidDescription, n.ID)
		}
		d.index[n.ID] = n
		for _, m := range nodes[:i] {
			if m.X == n.X && m.Y == n.Y {
				return nil, fmt.Errorf("%w: nodes %d and %d at (%g, %g)", ErrCoincidentNodes, m.ID, n.ID, n.X, n.Y)
			}
		}
	}
	return d, nil
}

// Build creates a diagram from a description. Transitions sharing a source
// and target are merged into one link with their labels joined; a transition
// back to its own source becomes a self-loop.
func Build(desc *fsm.Description, radius float64) (*Diagram, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if radius <= 0 {
		radius = DefaultNodeRadius
	}

	nodes := make([]*Node, 0, len(desc.States))
	byID := make(map[int]*Node, len(desc.States))
	for _, s := range desc.States {
		n := &Node{ID: s.ID, X: s.X, Y: s.Y, Label: s.Label, Accept: s.Final}
		nodes = append(nodes, n)
		byID[s.ID] = n
	}

	type edge struct{ from, to int }
	var order []edge
	labels := make(map[edge][]string)
	for _, s := range desc.States {
		for _, t := range s.Transitions {
			e := edge{s.ID, t.To}
			if _, ok := labels[e]; !ok {
				order = append(order, e)
			}
			labels[e] = append(labels[e], t.Label)
		}
	}

	var connectors []Connector
	for _, s := range desc.States {
		n := byID[s.ID]
		loopLabels := labels[edge{s.ID, s.ID}]
		if s.HasSelfLink() {
			loopLabels = append([]string{s.SelfLink}, loopLabels...)
		}
		if len(loopLabels) > 0 {
			loop := NewSelfLink(n, strings.Join(loopLabels, ", "))
			if s.SelfLinkAngle != nil {
				loop.AnchorAngle = normalizeAngle(*s.SelfLinkAngle)
			}
			connectors = append(connectors, loop)
		}
		if s.Start {
			connectors = append(connectors, NewStartLink(n, radius))
		}
	}

	for _, e := range order {
		if e.from == e.to {
			continue
		}
		link := NewDirectLink(byID[e.from], byID[e.to], strings.Join(labels[e], ", "))
		if _, ok := labels[edge{e.to, e.from}]; ok {
			link.PerpendicularPart = BidirectionalBend
		}
		connectors = append(connectors, link)
	}

	return New(desc.Name, radius, nodes, connectors)
}

// Node returns the node with the given id.
func (d *Diagram) Node(id int) (*Node, bool) {
	n, ok := d.index[id]
	return n, ok
}

// Resolver returns a resolver for this diagram's node radius.
func (d *Diagram) Resolver() Resolver {
	return NewResolver(d.NodeRadius)
}

// HitTest returns the connector or node under (x, y). Connectors are tested
// first, last drawn first; either result may be nil.
func (d *Diagram) HitTest(x, y float64) (Connector, *Node) {
	res := d.Resolver()
	for i := len(d.Connectors) - 1; i >= 0; i-- {
		if res.Contains(d.Connectors[i], x, y) {
			return d.Connectors[i], nil
		}
	}
	p := r2.Vec{X: x, Y: y}
	for i := len(d.Nodes) - 1; i >= 0; i-- {
		if d.Nodes[i].Contains(p, d.NodeRadius) {
			return nil, d.Nodes[i]
		}
	}
	return nil, nil
}
