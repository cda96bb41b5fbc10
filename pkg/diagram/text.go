package diagram

import (
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultFontSize is the label size in diagram units.
const DefaultFontSize = 16

// TextMeasurer reports the drawn width of a string.
type TextMeasurer interface {
	MeasureText(s string) float64
}

// TextInstruction says where to draw a label: X is the left end of the
// baseline, Y the baseline.
type TextInstruction struct {
	Text  string
	X, Y  float64
	Width float64
}

// TextPlacer positions labels around an anchor point.
type TextPlacer struct {
	Measurer TextMeasurer
}

// Place centers text horizontally on anchor. With an angle, the label is
// pushed outwards from the connector so it clears the line and arrow head.
func (tp TextPlacer) Place(text string, anchor r2.Vec, angle *float64) TextInstruction {
	width := tp.Measurer.MeasureText(text)
	x := anchor.X - width/2
	y := anchor.Y

	if angle != nil {
		cos, sin := math.Cos(*angle), math.Sin(*angle)
		cornerX := (width/2 + 5) * sign(cos)
		cornerY := (10 + 5) * sign(sin)
		slide := sin*math.Pow(math.Abs(sin), 40)*cornerX - cos*math.Pow(math.Abs(cos), 10)*cornerY
		x += cornerX - sin*slide
		y += cornerY + cos*slide
	}

	return TextInstruction{
		Text:  text,
		X:     math.Round(x),
		Y:     math.Round(y) + 6,
		Width: width,
	}
}

// sign is 1 for positive values and -1 otherwise.
func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	return -1
}

// NewFace returns the Go Regular font at size units.
func NewFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// faceMeasurer measures text with a font face.
type faceMeasurer struct {
	face font.Face
}

func (m faceMeasurer) MeasureText(s string) float64 {
	return float64(font.MeasureString(m.face, s)) / 64
}
