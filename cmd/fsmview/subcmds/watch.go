package subcmds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/fsmview/pkg/config"
	"github.com/ha1tch/fsmview/pkg/diagram"
	"github.com/ha1tch/fsmview/pkg/logging"
	"github.com/ha1tch/fsmview/pkg/monitor"
	"github.com/ha1tch/fsmview/pkg/statusfeed"
	"github.com/ha1tch/fsmview/pkg/termview"
)

type watchArgs struct {
	url     string
	pngFile string
	svgFile string
	tui     bool
	logFile string
}

func newWatchCommand(args *inArgs) *cobra.Command {
	wa := &watchArgs{}

	cmd := &cobra.Command{
		Use:   "watch <description>",
		Short: "Follow the live state over the status feed",
		Long: `watch connects to the status feed and redraws the diagram every time the
controller reports a state. Frames go to a PNG or SVG file, or to the terminal
with --tui, where p pings the station, r resets and q quits. Without an output
the reported states are only logged.`,
		Example: `  fsmview watch door.json --png /tmp/door.png
  fsmview watch door.json --url ws://station:8080/ --tui`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return args.watch(ctx, posArgs[0], wa)
		},
	}

	cmd.Flags().StringVarP(&wa.url, urlFlag, "u", "", "status feed URL (default from config, else "+config.DefaultFeedURL+")")
	cmd.Flags().StringVar(&wa.pngFile, pngFlag, "", "rewrite this PNG file on every frame")
	cmd.Flags().StringVar(&wa.svgFile, svgFlag, "", "rewrite this SVG file on every frame")
	cmd.Flags().BoolVar(&wa.tui, tuiFlag, false, "draw the diagram in the terminal")
	cmd.Flags().StringVar(&wa.logFile, logFileFlag, "", "append log output to this file (with --tui the log is discarded otherwise)")
	cmd.MarkFlagsMutuallyExclusive(pngFlag, svgFlag, tuiFlag)

	return cmd
}

func (a *inArgs) watch(ctx context.Context, path string, wa *watchArgs) error {
	log := a.log
	if wa.logFile != "" || wa.tui {
		w := io.Discard
		if wa.logFile != "" {
			f, err := os.OpenFile(wa.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		log = logging.New(w, a.verbosity)
	}

	desc, d, err := a.loadDiagram(path)
	if err != nil {
		return err
	}
	style, err := a.cfg.Style.DiagramStyle()
	if err != nil {
		return err
	}

	url := wa.url
	if url == "" {
		url = a.cfg.Feed.URL
	}

	opts := monitor.DefaultOptions()
	opts.Style = style
	opts.Logger = log

	if wa.tui {
		return watchTerminal(ctx, url, d, title(desc, path), opts)
	}

	var canvas diagram.Canvas = diagram.NewRecorder()
	switch {
	case wa.pngFile != "", wa.svgFile != "":
		out, format := wa.pngFile, pngFormat
		if wa.svgFile != "" {
			out, format = wa.svgFile, svgFormat
		}
		surf, err := newSurface(a.cfg, format, title(desc, path))
		if err != nil {
			return err
		}
		canvas = surf.canvas
		opts.OnFrame = func(s monitor.Snapshot) {
			if err := surf.writeFrame(out); err != nil {
				log.Error("cannot write frame", "output", out, "err", err)
				return
			}
			log.Info("frame", "output", out, "status", s.Status, "frame", s.Frame)
		}
	default:
		opts.OnFrame = func(s monitor.Snapshot) {
			log.Info("frame", "status", s.Status, "frame", s.Frame)
		}
	}

	m := monitor.New(d, canvas, opts)
	m.Redraw()

	client, err := statusfeed.Dial(ctx, url, statusfeed.NewDispatcher(m.Handlers(), log), log)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Run(ctx)
}

// watchTerminal runs the feed client and the terminal view side by side.
// Whichever stops first stops the other.
func watchTerminal(ctx context.Context, url string, d *diagram.Diagram, frameTitle string, opts monitor.Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	return runTerminal(ctx, screen, url, d, frameTitle, opts)
}

func runTerminal(ctx context.Context, screen tcell.Screen, url string, d *diagram.Diagram, frameTitle string,
	opts monitor.Options) error {
	view := termview.NewView(screen, frameTitle)
	opts.OnFrame = view.Notify
	m := monitor.New(d, view.Canvas, opts)

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	client, err := statusfeed.Dial(ctx, url, statusfeed.NewDispatcher(m.Handlers(), log), log)
	if err != nil {
		return err
	}
	defer client.Close()

	view.Bindings = append(view.Bindings, termview.Binding{Key: 'p', Help: "ping", Action: func() {
		if err := client.SendMessage(statusfeed.TypePing, nil); err != nil {
			log.Warn("ping failed", "err", err)
		}
	}})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return client.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return view.Run(gctx, m)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, termview.ErrQuit) {
		return err
	}
	return nil
}
