// Package subcmds defines fsmview's subcommands, their flags and their
// behavior.
//
// The root command's PersistentPreRunE loads the configuration and
// initializes the logger; each subcommand's RunE loads its description and
// does the work.
package subcmds

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/fsmview/pkg/config"
	"github.com/ha1tch/fsmview/pkg/diagram"
	"github.com/ha1tch/fsmview/pkg/fsm"
	"github.com/ha1tch/fsmview/pkg/fsmfile"
	"github.com/ha1tch/fsmview/pkg/logging"
)

const (
	configFlag  = "config"
	envFileFlag = "env-file"
	outputFlag  = "output"
	titleFlag   = "title"
	stateFlag   = "state"
	urlFlag     = "url"
	pngFlag     = "png"
	svgFlag     = "svg"
	tuiFlag     = "tui"
	logFileFlag = "log-file"
	prettyFlag  = "pretty"
	quietFlag   = "quiet"
	verboseFlag = "verbose"

	defaultEnvFile = ".env"
)

// inArgs holds parsed flag values and what the root command derived from
// them.
type inArgs struct {
	configFile string
	envFile    string
	quiet      bool
	verbose    bool

	cfg       config.Config
	verbosity logging.Verbosity
	log       *slog.Logger
}

// NewRootCommand builds the fsmview command tree.
func NewRootCommand() *cobra.Command {
	args := &inArgs{}

	rootCmd := &cobra.Command{
		Use:   "fsmview",
		Short: "fsmview renders FSM diagrams and highlights the live state",
		Long: `fsmview draws finite state machine diagrams from JSON or YAML descriptions
and follows a controller's current state over a websocket status feed.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main logs the returned error
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(args.configFile, args.envFile)
			if err != nil {
				return err
			}
			verbosity := cfg.Verbosity()
			if args.quiet {
				verbosity = logging.LowVerbosity
			} else if args.verbose {
				verbosity = logging.HighVerbosity
			}
			args.cfg = cfg
			args.verbosity = verbosity
			args.log = logging.Init(verbosity)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&args.configFile, configFlag, "c", "", "path to a TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&args.envFile, envFileFlag, defaultEnvFile, "path to a .env file with FSMVIEW_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&args.quiet, quietFlag, "q", false, "runs quietly, reports only errors")
	rootCmd.PersistentFlags().BoolVarP(&args.verbose, verboseFlag, "v", false, "runs with debug messages printed to log")
	rootCmd.MarkFlagsMutuallyExclusive(quietFlag, verboseFlag)
	rootCmd.PersistentFlags().SortFlags = false

	rootCmd.AddCommand(newRenderCommand(args))
	rootCmd.AddCommand(newDotCommand(args))
	rootCmd.AddCommand(newConvertCommand(args))
	rootCmd.AddCommand(newInfoCommand(args))
	rootCmd.AddCommand(newValidateCommand(args))
	rootCmd.AddCommand(newWatchCommand(args))
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return rootCmd
}

// loadDiagram reads a description and lays it out with the configured node
// radius.
func (a *inArgs) loadDiagram(path string) (*fsm.Description, *diagram.Diagram, error) {
	desc, err := fsmfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	d, err := diagram.Build(desc, a.cfg.Diagram.NodeRadius)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	a.log.Debug("loaded diagram", "path", path, "states", len(d.Nodes), "connectors", len(d.Connectors))
	return desc, d, nil
}

// title picks the frame title: the description's name, else the file name.
func title(desc *fsm.Description, path string) string {
	if desc.Name != "" {
		return desc.Name
	}
	return path
}

func mustBeOneOf(values []string) string {
	return fmt.Sprintf("must be one of [%s]", strings.Join(values, ", "))
}
