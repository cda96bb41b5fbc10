// Native PNG rendering for FSM diagrams.
// Draws anti-aliased paths with the x/image vector rasterizer.

package diagram

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// RasterOptions configures raster rendering.
type RasterOptions struct {
	Width       int
	Height      int
	FontSize    float64
	Supersample int // draw at this multiple of the output size, then downsample
}

// DefaultRasterOptions returns sensible defaults for raster rendering.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		Width:       800,
		Height:      600,
		FontSize:    DefaultFontSize,
		Supersample: 2,
	}
}

// Raster is a Canvas backed by an RGBA image.
type Raster struct {
	opts  RasterOptions
	img   *image.RGBA
	scale float64
	face  font.Face
}

// NewRaster creates a raster canvas.
func NewRaster(opts RasterOptions) (*Raster, error) {
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	ss := opts.Supersample
	face, err := NewFace(opts.FontSize * float64(ss))
	if err != nil {
		return nil, err
	}
	return &Raster{
		opts:  opts,
		img:   image.NewRGBA(image.Rect(0, 0, opts.Width*ss, opts.Height*ss)),
		scale: float64(ss),
		face:  face,
	}, nil
}

// Image returns the frame at output size.
func (r *Raster) Image() *image.RGBA {
	if r.scale == 1 {
		return r.img
	}
	out := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), r.img, r.img.Bounds(), draw.Src, nil)
	return out
}

// EncodePNG writes the frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image())
}

func (r *Raster) MeasureText(s string) float64 {
	return float64(font.MeasureString(r.face, s)) / 64 / r.scale
}

func (r *Raster) Clear(bg color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (r *Raster) StrokeArc(center r2.Vec, radius, start, end float64, anticlockwise bool, width float64, c color.Color) {
	sweep := ArcSweep(start, end, anticlockwise)
	steps := arcSteps(radius*r.scale, sweep)
	half := width / 2
	if half*r.scale < 0.5 {
		half = 0.5 / r.scale
	}

	r.fill(c, func(z *vector.Rasterizer) {
		for i := 0; i <= steps; i++ {
			p := pointOnCircle(center, radius+half, start+sweep*float64(i)/float64(steps))
			r.pathTo(z, p, i == 0)
		}
		for i := steps; i >= 0; i-- {
			p := pointOnCircle(center, math.Max(radius-half, 0), start+sweep*float64(i)/float64(steps))
			r.pathTo(z, p, false)
		}
		z.ClosePath()
	})
}

func (r *Raster) StrokeLine(from, to r2.Vec, width float64, c color.Color) {
	d := r2.Sub(to, from)
	length := r2.Norm(d)
	if length == 0 {
		return
	}
	half := width / 2
	if half*r.scale < 0.5 {
		half = 0.5 / r.scale
	}
	n := r2.Scale(half/length, r2.Vec{X: -d.Y, Y: d.X})
	r.FillPolygon([]r2.Vec{r2.Add(from, n), r2.Add(to, n), r2.Sub(to, n), r2.Sub(from, n)}, c)
}

func (r *Raster) FillPolygon(points []r2.Vec, c color.Color) {
	if len(points) < 3 {
		return
	}
	r.fill(c, func(z *vector.Rasterizer) {
		for i, p := range points {
			r.pathTo(z, p, i == 0)
		}
		z.ClosePath()
	})
}

func (r *Raster) FillCircle(center r2.Vec, radius float64, c color.Color) {
	steps := arcSteps(radius*r.scale, 2*math.Pi)
	r.fill(c, func(z *vector.Rasterizer) {
		for i := 0; i < steps; i++ {
			r.pathTo(z, pointOnCircle(center, radius, 2*math.Pi*float64(i)/float64(steps)), i == 0)
		}
		z.ClosePath()
	})
}

func (r *Raster) FillText(text string, x, y float64, c color.Color) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * r.scale * 64),
			Y: fixed.Int26_6(y * r.scale * 64),
		},
	}
	d.DrawString(text)
}

// fill rasterizes the path built by build and composites c over the image.
func (r *Raster) fill(c color.Color, build func(z *vector.Rasterizer)) {
	b := r.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	build(z)
	z.Draw(r.img, b, image.NewUniform(c), image.Point{})
}

func (r *Raster) pathTo(z *vector.Rasterizer, p r2.Vec, move bool) {
	x, y := float32(p.X*r.scale), float32(p.Y*r.scale)
	if move {
		z.MoveTo(x, y)
	} else {
		z.LineTo(x, y)
	}
}

// arcSteps picks a segment count giving roughly 2px chords.
func arcSteps(radius, sweep float64) int {
	n := int(math.Ceil(math.Abs(sweep) * radius / 2))
	if n < 8 {
		n = 8
	}
	if n > 720 {
		n = 720
	}
	return n
}
