package diagram

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// SVGOptions controls SVG rendering.
type SVGOptions struct {
	Width    int
	Height   int
	FontSize float64
	Title    string // emitted as <title> when set
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:    800,
		Height:   600,
		FontSize: DefaultFontSize,
	}
}

// SVG is a Canvas that accumulates SVG elements.
type SVG struct {
	opts     SVGOptions
	measurer TextMeasurer
	elems    []string
}

// NewSVG creates an SVG canvas. Text is measured with the same font metrics
// as the raster canvas so label placement matches between formats.
func NewSVG(opts SVGOptions) (*SVG, error) {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	face, err := NewFace(opts.FontSize)
	if err != nil {
		return nil, err
	}
	return &SVG{opts: opts, measurer: faceMeasurer{face: face}}, nil
}

func (s *SVG) MeasureText(text string) float64 {
	return s.measurer.MeasureText(text)
}

func (s *SVG) Clear(bg color.Color) {
	fill, opacity := svgColor(bg)
	s.elems = []string{fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s" fill-opacity="%s"/>`, fill, num(opacity))}
}

func (s *SVG) StrokeArc(center r2.Vec, radius, start, end float64, anticlockwise bool, width float64, c color.Color) {
	stroke, opacity := svgColor(c)
	sweep := ArcSweep(start, end, anticlockwise)
	if math.Abs(sweep) >= 2*math.Pi-1e-9 {
		s.add(`<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%s"/>`,
			num(center.X), num(center.Y), num(radius), stroke, num(opacity), num(width))
		return
	}

	p0 := pointOnCircle(center, radius, start)
	p1 := pointOnCircle(center, radius, start+sweep)
	large, dir := 0, 0
	if math.Abs(sweep) > math.Pi {
		large = 1
	}
	if sweep > 0 {
		dir = 1
	}
	s.add(`<path d="M %s %s A %s %s 0 %d %d %s %s" fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%s"/>`,
		num(p0.X), num(p0.Y), num(radius), num(radius), large, dir, num(p1.X), num(p1.Y),
		stroke, num(opacity), num(width))
}

func (s *SVG) StrokeLine(from, to r2.Vec, width float64, c color.Color) {
	stroke, opacity := svgColor(c)
	s.add(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-opacity="%s" stroke-width="%s"/>`,
		num(from.X), num(from.Y), num(to.X), num(to.Y), stroke, num(opacity), num(width))
}

func (s *SVG) FillPolygon(points []r2.Vec, c color.Color) {
	fill, opacity := svgColor(c)
	pts := make([]string, len(points))
	for i, p := range points {
		pts[i] = num(p.X) + "," + num(p.Y)
	}
	s.add(`<polygon points="%s" fill="%s" fill-opacity="%s"/>`, strings.Join(pts, " "), fill, num(opacity))
}

func (s *SVG) FillCircle(center r2.Vec, radius float64, c color.Color) {
	fill, opacity := svgColor(c)
	s.add(`<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s"/>`,
		num(center.X), num(center.Y), num(radius), fill, num(opacity))
}

func (s *SVG) FillText(text string, x, y float64, c color.Color) {
	fill, opacity := svgColor(c)
	s.add(`<text x="%s" y="%s" font-family="Go, sans-serif" font-size="%s" fill="%s" fill-opacity="%s">%s</text>`,
		num(x), num(y), num(s.opts.FontSize), fill, num(opacity), html.EscapeString(text))
}

func (s *SVG) add(format string, args ...interface{}) {
	s.elems = append(s.elems, fmt.Sprintf(format, args...))
}

// String returns the complete SVG document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		s.opts.Width, s.opts.Height, s.opts.Width, s.opts.Height))
	sb.WriteString("\n")
	if s.opts.Title != "" {
		sb.WriteString(fmt.Sprintf("  <title>%s</title>\n", html.EscapeString(s.opts.Title)))
	}
	for _, e := range s.elems {
		sb.WriteString("  ")
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteTo writes the SVG document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// svgColor converts c to a hex colour and an opacity in [0, 1].
func svgColor(c color.Color) (string, float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 255
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
