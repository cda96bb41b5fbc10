// Command fsmview renders FSM diagrams and follows a live controller's
// state over the status feed.
package main

import (
	"log/slog"
	"os"

	"github.com/ha1tch/fsmview/cmd/fsmview/subcmds"
	"github.com/ha1tch/fsmview/pkg/logging"
)

// _main runs the command line and returns an error rather than exiting, so
// it can be driven from tests.
func _main(cmdlineArgs []string) error {
	rootCmd := subcmds.NewRootCommand()
	rootCmd.SetArgs(cmdlineArgs)
	return rootCmd.Execute()
}

func main() {
	if err := _main(os.Args[1:]); err != nil {
		logging.Init(logging.MediumVerbosity)
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}
