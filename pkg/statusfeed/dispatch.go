package statusfeed

import (
	"context"
	"log/slog"
)

// HandlerFunc handles the text body of one frame.
type HandlerFunc func(body string) error

// Dispatcher routes frames to handlers by message type.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	log      *slog.Logger
}

// NewDispatcher creates a dispatcher from an explicit type to handler map.
// A nil logger uses slog.Default().
func NewDispatcher(handlers map[string]HandlerFunc, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	hs := make(map[string]HandlerFunc, len(handlers))
	for typ, h := range handlers {
		hs[typ] = h
	}
	return &Dispatcher{handlers: hs, log: log}
}

// Dispatch decodes frame and calls the handler for its type. Frames that are
// not JSON are logged and dropped; unknown types are ignored. It reports
// whether a handler ran.
func (d *Dispatcher) Dispatch(frame []byte) bool {
	env, err := Decode(frame)
	if err != nil {
		d.log.Error("dropping non-JSON frame", "err", err, "len", len(frame))
		return false
	}

	h, ok := d.handlers[env.Type]
	if !ok {
		d.log.Debug("ignoring frame", "type", env.Type)
		return false
	}

	if err := h(env.Text()); err != nil {
		d.log.Warn("handler failed", "type", env.Type, "err", err)
	}
	return true
}

// LogHandlers returns handlers writing the station's log messages to log,
// each at its own level, and acknowledging pings.
func LogHandlers(log *slog.Logger) map[string]HandlerFunc {
	logAt := func(level slog.Level) HandlerFunc {
		return func(body string) error {
			log.Log(context.Background(), level, body, "source", "station")
			return nil
		}
	}
	return map[string]HandlerFunc{
		TypeInfo:     logAt(slog.LevelInfo),
		TypeDebug:    logAt(slog.LevelDebug),
		TypeWarning:  logAt(slog.LevelWarn),
		TypeCritical: logAt(slog.LevelError),
		TypePing: func(string) error {
			log.Info("connectivity ok")
			return nil
		},
	}
}
