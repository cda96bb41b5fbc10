package diagram

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/fsmview/pkg/fsm"
)

func TestRasterRender(t *testing.T) {
	d, err := Build(sampleDescription(), 50)
	require.NoError(t, err)

	r, err := NewRaster(RasterOptions{Width: 400, Height: 400, Supersample: 1})
	require.NoError(t, err)
	NewRenderer(r, DefaultStyle()).Render(d, &fsm.HighlightState{Current: 0, Repeat: 1})

	img := r.Image()
	assert.Equal(t, 400, img.Bounds().Dx())

	bg := img.RGBAAt(5, 5)
	assert.Equal(t, uint8(255), bg.R)
	assert.Equal(t, uint8(255), bg.B)

	// inside the highlight disc, below the label
	hl := img.RGBAAt(100, 130)
	assert.Greater(t, hl.R, uint8(200))
	assert.Greater(t, hl.G, uint8(200))
	assert.Less(t, hl.B, uint8(220))

	// node ring on the left edge of S
	ring := min(img.RGBAAt(49, 100).R, img.RGBAAt(50, 100).R)
	assert.Less(t, ring, uint8(200))
}

func TestRasterEncodePNG(t *testing.T) {
	r, err := NewRaster(RasterOptions{Width: 64, Height: 32, Supersample: 2})
	require.NoError(t, err)
	NewRenderer(r, DefaultStyle()).Render(&Diagram{NodeRadius: 10}, nil)

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestSVGRender(t *testing.T) {
	d, err := Build(sampleDescription(), 50)
	require.NoError(t, err)

	opts := DefaultSVGOptions()
	opts.Title = "sample"
	s, err := NewSVG(opts)
	require.NoError(t, err)
	NewRenderer(s, DefaultStyle()).Render(d, &fsm.HighlightState{Current: 1, Repeat: 2})

	out := s.String()
	assert.True(t, strings.HasPrefix(out, "<?xml") || strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "<title>sample</title>")
	assert.Contains(t, out, ">go<")
	assert.Contains(t, out, ">Start<")
	assert.Equal(t, 2, strings.Count(out, "<polygon"))
	assert.Contains(t, out, `r="44"`)
	assert.Contains(t, out, `fill-opacity`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestSVGArcPath(t *testing.T) {
	a, b := node(0, 0, 0), node(1, 200, 0)
	l := NewDirectLink(a, b, "")
	l.PerpendicularPart = 50
	d, err := New("", 50, []*Node{a, b}, []Connector{l})
	require.NoError(t, err)

	s, err := NewSVG(DefaultSVGOptions())
	require.NoError(t, err)
	NewRenderer(s, DefaultStyle()).Render(d, nil)
	assert.Contains(t, s.String(), " A 125 125 ")
}

func TestSVGEscapesText(t *testing.T) {
	s, err := NewSVG(DefaultSVGOptions())
	require.NoError(t, err)
	s.FillText("a<b & c", 0, 0, DefaultStyle().Text)
	assert.Contains(t, s.String(), "a&lt;b &amp; c")
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		0:       "0",
		100:     "100",
		1.5:     "1.5",
		-0.001:  "0",
		12.3456: "12.35",
	}
	for in, want := range tests {
		assert.Equal(t, want, num(in), "num(%v)", in)
	}
}
