// Package logging sets up the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Verbosity is an enumerated type for defining the level of verbosity.
type Verbosity int

const (
	LowVerbosity    Verbosity = iota // LowVerbosity only reports errors
	MediumVerbosity                  // MediumVerbosity reports warnings and errors
	HighVerbosity                    // HighVerbosity reports debug, infos, warnings and errors
)

// Level maps the verbosity to the lowest slog level that is logged.
func (v Verbosity) Level() slog.Level {
	switch v {
	case LowVerbosity:
		return slog.LevelError
	case MediumVerbosity:
		return slog.LevelWarn
	}
	return slog.LevelDebug
}

func (v Verbosity) String() string {
	switch v {
	case LowVerbosity:
		return "low"
	case MediumVerbosity:
		return "medium"
	case HighVerbosity:
		return "high"
	}
	return fmt.Sprintf("Verbosity(%d)", int(v))
}

// ParseVerbosity accepts low, medium or high (case-insensitive).
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "quiet":
		return LowVerbosity, nil
	case "medium", "":
		return MediumVerbosity, nil
	case "high", "verbose":
		return HighVerbosity, nil
	}
	return MediumVerbosity, fmt.Errorf("unknown verbosity %q", s)
}

// New returns a logger writing coloured lines to w.
func New(w io.Writer, verbosity Verbosity) *slog.Logger {
	return slog.New(NewPrettyHandler(w, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: verbosity.Level()},
	}))
}

// Init installs a stderr logger with the given verbosity as the slog default.
// It is called from main when the application starts up.
func Init(verbosity Verbosity) *slog.Logger {
	logger := New(os.Stderr, verbosity)
	slog.SetDefault(logger)
	return logger
}
