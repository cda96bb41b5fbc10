package fsmfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/fsmview/pkg/fsm"
)

// GenerateDOT converts a description to Graphviz DOT format. Node positions
// are pinned so neato reproduces the diagram layout.
func GenerateDOT(d *fsm.Description, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph FSM {\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title == "" {
		title = d.Name
	}
	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	// Invisible start nodes
	for _, id := range d.StartStates() {
		sb.WriteString(fmt.Sprintf("    __start%d [shape=none, label=\"\", width=0, height=0];\n", id))
		sb.WriteString(fmt.Sprintf("    __start%d -> %s;\n", id, dotID(id)))
	}
	if len(d.StartStates()) > 0 {
		sb.WriteString("\n")
	}

	for _, s := range d.States {
		shape := "circle"
		if s.Final {
			shape = "doublecircle"
		}
		label := s.Label
		if label == "" {
			label = fmt.Sprint(s.ID)
		}
		// DOT positions are in points with y growing upwards
		sb.WriteString(fmt.Sprintf("    %s [shape=%s, label=\"%s\", pos=\"%g,%g!\"];\n",
			dotID(s.ID), shape, escapeDOT(label), s.X, 0-s.Y))
	}
	sb.WriteString("\n")

	// Group transitions by (from, to), keeping first-seen order
	type edge struct{ from, to int }
	var order []edge
	edgeLabels := make(map[edge][]string)
	add := func(e edge, label string) {
		if _, ok := edgeLabels[e]; !ok {
			order = append(order, e)
			edgeLabels[e] = nil
		}
		if label != "" {
			edgeLabels[e] = append(edgeLabels[e], label)
		}
	}
	for _, s := range d.States {
		if s.HasSelfLink() {
			add(edge{s.ID, s.ID}, s.SelfLink)
		}
		for _, t := range s.Transitions {
			add(edge{s.ID, t.To}, t.Label)
		}
	}

	for _, e := range order {
		combined := strings.Join(edgeLabels[e], ", ")
		if combined == "" {
			sb.WriteString(fmt.Sprintf("    %s -> %s;\n", dotID(e.from), dotID(e.to)))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -> %s [label=\"%s\"];\n",
			dotID(e.from), dotID(e.to), escapeDOT(combined)))
	}

	sb.WriteString("}\n")

	return sb.String()
}

func dotID(id int) string {
	if id < 0 {
		return fmt.Sprintf("s_%d", -id)
	}
	return fmt.Sprintf("s%d", id)
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
