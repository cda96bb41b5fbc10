// Package termview draws FSM diagrams in a terminal with tcell.
package termview

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ha1tch/fsmview/pkg/diagram"
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2

// textMiddle is the distance from a label's baseline to its middle, in
// diagram units.
const textMiddle = 6

// Rect is a region of the screen in cells.
type Rect struct {
	X, Y, W, H int
}

// Canvas is a diagram.Canvas drawing into a region of a tcell screen. Each
// cell covers Scale diagram units horizontally and twice that vertically.
type Canvas struct {
	Area   Rect
	Scale  float64 // diagram units per cell column
	Origin r2.Vec  // diagram point drawn at the area's top-left corner

	screen tcell.Screen
	bg     color.Color
}

// NewCanvas creates a canvas covering the whole screen at 10 units per cell.
func NewCanvas(s tcell.Screen) *Canvas {
	w, h := s.Size()
	return &Canvas{
		Area:   Rect{W: w, H: h},
		Scale:  10,
		screen: s,
		bg:     color.Black,
	}
}

// Fit picks Scale and Origin so every node, loop and start marker of d is
// visible in Area.
func (c *Canvas) Fit(d *diagram.Diagram) {
	if len(d.Nodes) == 0 || c.Area.W <= 0 || c.Area.H <= 0 {
		return
	}
	margin := 2.5 * d.NodeRadius
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range d.Nodes {
		minX = math.Min(minX, n.X-margin)
		minY = math.Min(minY, n.Y-margin)
		maxX = math.Max(maxX, n.X+margin)
		maxY = math.Max(maxY, n.Y+margin)
	}

	spanX, spanY := maxX-minX, maxY-minY
	c.Scale = math.Max(spanX/float64(c.Area.W), spanY/float64(c.Area.H*cellAspect))
	// center the drawing in the area
	c.Origin = r2.Vec{
		X: (minX+maxX)/2 - c.Scale*float64(c.Area.W)/2,
		Y: (minY+maxY)/2 - c.Scale*cellAspect*float64(c.Area.H)/2,
	}
}

// Cell returns the screen cell containing diagram point p.
func (c *Canvas) Cell(p r2.Vec) (int, int) {
	col := c.Area.X + int(math.Floor((p.X-c.Origin.X)/c.Scale))
	row := c.Area.Y + int(math.Floor((p.Y-c.Origin.Y)/(c.Scale*cellAspect)))
	return col, row
}

// cellCenter returns the diagram point at the middle of a cell.
func (c *Canvas) cellCenter(col, row int) r2.Vec {
	return r2.Vec{
		X: c.Origin.X + (float64(col-c.Area.X)+0.5)*c.Scale,
		Y: c.Origin.Y + (float64(row-c.Area.Y)+0.5)*c.Scale*cellAspect,
	}
}

func (c *Canvas) inside(col, row int) bool {
	return col >= c.Area.X && col < c.Area.X+c.Area.W && row >= c.Area.Y && row < c.Area.Y+c.Area.H
}

// set draws r in colour fg, keeping the cell's background.
func (c *Canvas) set(col, row int, r rune, fg color.Color) {
	if !c.inside(col, row) {
		return
	}
	_, _, style, _ := c.screen.GetContent(col, row)
	c.screen.SetContent(col, row, r, nil, style.Foreground(tcellColor(fg)))
}

func (c *Canvas) MeasureText(s string) float64 {
	return float64(runewidth.StringWidth(s)) * c.Scale
}

func (c *Canvas) Clear(bg color.Color) {
	c.bg = bg
	style := tcell.StyleDefault.Background(tcellColor(bg))
	for row := c.Area.Y; row < c.Area.Y+c.Area.H; row++ {
		for col := c.Area.X; col < c.Area.X+c.Area.W; col++ {
			c.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (c *Canvas) StrokeArc(center r2.Vec, radius, start, end float64, anticlockwise bool, _ float64, fg color.Color) {
	sweep := diagram.ArcSweep(start, end, anticlockwise)
	steps := int(math.Ceil(math.Abs(sweep) * radius / c.Scale * 2))
	if steps < 8 {
		steps = 8
	}
	turn := math.Pi / 2
	if sweep < 0 {
		turn = -turn
	}

	// each cell takes the direction of the sample closest to its center
	type sample struct {
		dist float64
		r    rune
	}
	cells := make(map[[2]int]sample)
	for i := 0; i <= steps; i++ {
		a := start + sweep*float64(i)/float64(steps)
		p := r2.Add(center, r2.Scale(radius, r2.Vec{X: math.Cos(a), Y: math.Sin(a)}))
		col, row := c.Cell(p)
		key := [2]int{col, row}
		dist := r2.Norm(r2.Sub(p, c.cellCenter(col, row)))
		if best, ok := cells[key]; ok && best.dist <= dist {
			continue
		}
		cells[key] = sample{dist: dist, r: lineRune(math.Cos(a+turn), math.Sin(a+turn))}
	}
	for key, s := range cells {
		c.set(key[0], key[1], s.r, fg)
	}
}

func (c *Canvas) StrokeLine(from, to r2.Vec, _ float64, fg color.Color) {
	d := r2.Sub(to, from)
	r := lineRune(d.X, d.Y)
	c0, r0 := c.Cell(from)
	c1, r1 := c.Cell(to)
	steps := 2 * max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		c.set(c0, r0, r, fg)
		return
	}
	for i := 0; i <= steps; i++ {
		col, row := c.Cell(r2.Add(from, r2.Scale(float64(i)/float64(steps), d)))
		c.set(col, row, r, fg)
	}
}

// FillPolygon draws triangles as an arrow glyph at their first vertex and
// fills other polygons cell by cell.
func (c *Canvas) FillPolygon(points []r2.Vec, fg color.Color) {
	if len(points) < 3 {
		return
	}
	if len(points) == 3 {
		base := r2.Scale(0.5, r2.Add(points[1], points[2]))
		d := r2.Sub(points[0], base)
		col, row := c.Cell(points[0])
		c.set(col, row, arrowRune(d.X, d.Y), fg)
		return
	}

	c0, r0, c1, r1 := c.bounds(points)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if insidePolygon(c.cellCenter(col, row), points) {
				c.set(col, row, '█', fg)
			}
		}
	}
}

// FillCircle tints the background of the cells inside the circle,
// blending translucent colours over what is there.
func (c *Canvas) FillCircle(center r2.Vec, radius float64, fill color.Color) {
	c0, r0 := c.Cell(r2.Sub(center, r2.Vec{X: radius, Y: radius}))
	c1, r1 := c.Cell(r2.Add(center, r2.Vec{X: radius, Y: radius}))
	hit := false
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if r2.Norm(r2.Sub(c.cellCenter(col, row), center)) <= radius {
				c.tint(col, row, fill)
				hit = true
			}
		}
	}
	if !hit {
		col, row := c.Cell(center)
		c.tint(col, row, fill)
	}
}

func (c *Canvas) FillText(text string, x, y float64, fg color.Color) {
	col, row := c.Cell(r2.Vec{X: x, Y: y - textMiddle})
	for _, r := range text {
		c.set(col, row, r, fg)
		col += runewidth.RuneWidth(r)
	}
}

func (c *Canvas) tint(col, row int, fill color.Color) {
	if !c.inside(col, row) {
		return
	}
	mainc, combc, style, _ := c.screen.GetContent(col, row)
	_, under, _ := style.Decompose()
	var base color.Color = c.bg
	if r, g, b := under.RGB(); r >= 0 {
		base = color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	}
	c.screen.SetContent(col, row, mainc, combc, style.Background(blend(fill, base)))
}

func (c *Canvas) bounds(points []r2.Vec) (int, int, int, int) {
	c0, r0 := c.Cell(points[0])
	c1, r1 := c0, r0
	for _, p := range points[1:] {
		col, row := c.Cell(p)
		c0, c1 = min(c0, col), max(c1, col)
		r0, r1 = min(r0, row), max(r1, row)
	}
	return c0, r0, c1, r1
}

// lineRune picks a box-drawing glyph for a stroke heading along (dx, dy).
func lineRune(dx, dy float64) rune {
	angle := math.Atan2(dy/cellAspect, dx)
	slope := math.Abs(math.Tan(angle))
	switch {
	case slope < 0.4:
		return '─'
	case slope > 2.5:
		return '│'
	case dx*dy > 0:
		return '╲'
	}
	return '╱'
}

// arrowRune picks an arrow head glyph pointing along (dx, dy).
func arrowRune(dx, dy float64) rune {
	if math.Abs(dx) >= math.Abs(dy)*cellAspect/2 {
		if dx >= 0 {
			return '▶'
		}
		return '◀'
	}
	if dy >= 0 {
		return '▼'
	}
	return '▲'
}

func insidePolygon(p r2.Vec, points []r2.Vec) bool {
	in := false
	j := len(points) - 1
	for i := range points {
		a, b := points[i], points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
		j = i
	}
	return in
}

// tcellColor converts c to an RGB terminal colour, ignoring alpha.
func tcellColor(c color.Color) tcell.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}

// blend composites fill over base.
func blend(fill, base color.Color) tcell.Color {
	n := color.NRGBAModel.Convert(fill).(color.NRGBA)
	if n.A == 255 {
		return tcellColor(n)
	}
	top, _ := colorful.MakeColor(color.NRGBA{R: n.R, G: n.G, B: n.B, A: 255})
	bottom, ok := colorful.MakeColor(base)
	if !ok {
		bottom = colorful.Color{}
	}
	mixed := bottom.BlendRgb(top, float64(n.A)/255).Clamped()
	r, g, b := mixed.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
