package subcmds

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/fsmview/pkg/config"
	"github.com/ha1tch/fsmview/pkg/diagram"
	"github.com/ha1tch/fsmview/pkg/monitor"
)

const (
	pngFormat = "png"
	svgFormat = "svg"
)

var allFormats = []string{pngFormat, svgFormat}

// surface is a canvas plus the encoder for its current frame.
type surface struct {
	canvas diagram.Canvas
	encode func(w io.Writer) error
}

func newSurface(cfg config.Config, format, frameTitle string) (*surface, error) {
	switch format {
	case pngFormat:
		r, err := diagram.NewRaster(cfg.RasterOptions())
		if err != nil {
			return nil, err
		}
		return &surface{canvas: r, encode: r.EncodePNG}, nil
	case svgFormat:
		s, err := diagram.NewSVG(cfg.SVGOptions(frameTitle))
		if err != nil {
			return nil, err
		}
		return &surface{canvas: s, encode: func(w io.Writer) error {
			_, err := s.WriteTo(w)
			return err
		}}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q; %s", format, mustBeOneOf(allFormats))
	}
}

// formatFromPath infers the frame format from the output extension.
func formatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range allFormats {
		if ext == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("cannot infer output format of %s; extension %s", path, mustBeOneOf(allFormats))
}

// writeFrame replaces path with the surface's current frame. The frame is
// written to a temporary file first so readers never see a partial image.
func (s *surface) writeFrame(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := s.encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func newRenderCommand(args *inArgs) *cobra.Command {
	var output string
	var states []int

	cmd := &cobra.Command{
		Use:   "render <description>",
		Short: "Render a diagram to PNG or SVG",
		Long: `render draws the diagram once. Each --state reports that state to the tracker
in order, so repeating a state shows its repeat counter.`,
		Example: `  fsmview render door.json -o door.png
  fsmview render door.yaml -o door.svg --state 1 --state 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, posArgs []string) error {
			format, err := formatFromPath(output)
			if err != nil {
				return err
			}
			desc, d, err := args.loadDiagram(posArgs[0])
			if err != nil {
				return err
			}
			style, err := args.cfg.Style.DiagramStyle()
			if err != nil {
				return err
			}
			surf, err := newSurface(args.cfg, format, title(desc, posArgs[0]))
			if err != nil {
				return err
			}

			opts := monitor.DefaultOptions()
			opts.Style = style
			opts.Logger = args.log
			m := monitor.New(d, surf.canvas, opts)
			if len(states) == 0 {
				m.Redraw()
			}
			for _, id := range states {
				if _, ok := m.ShowState(id); !ok {
					return fmt.Errorf("%s has no state %d", posArgs[0], id)
				}
			}

			if err := surf.writeFrame(output); err != nil {
				return err
			}
			args.log.Info("rendered", "output", output, "status", m.Snapshot().Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, outputFlag, "o", "", "output file; format from extension, "+mustBeOneOf(allFormats))
	cmd.Flags().IntSliceVarP(&states, stateFlag, "s", nil, "highlight this state id; repeat to count repeats")
	_ = cmd.MarkFlagRequired(outputFlag)

	return cmd
}
