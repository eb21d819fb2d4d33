package herofield

import (
	"log/slog"
	"sync/atomic"
)

// silent is handed out until SetLogger installs a real logger.
var silent = slog.New(slog.DiscardHandler)

// active holds the installed logger. Hosts log from their own goroutines
// while a CLI may swap loggers, so access is atomic.
var active atomic.Pointer[slog.Logger]

// SetLogger installs the logger shared by herofield and its hosts.
// Nothing is logged until it is called. nil restores silence.
//
// Levels:
//   - [slog.LevelDebug]: surface configuration, grid rebuilds, loop state
//   - [slog.LevelInfo]: mount and unmount
//   - [slog.LevelWarn]: paint and present failures, config reload errors
//
// Example:
//
//	herofield.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	active.Store(l)
}

// Logger returns the installed logger, or a discarding one.
func Logger() *slog.Logger {
	if l := active.Load(); l != nil {
		return l
	}
	return silent
}
