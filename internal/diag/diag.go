// Package diag decouples the synthesis engine from any concrete logging
// backend. The engine itself only ever needs to warn about a value it
// silently clamped; it never fails a call because of what it logs.
package diag

import "github.com/book-expert/logger"

// Logger is the minimal surface the engine and its ambient packages need
// for diagnostics. It is satisfied by Nop and by FromBookExpert.
type Logger interface {
	Warnf(format string, args ...any)
}

// Nop is the zero-cost default logger: every call is a no-op. Callers that
// do not care about diagnostics (most tests, most library embeddings) never
// need to construct anything.
type Nop struct{}

// Warnf implements Logger by discarding its arguments.
func (Nop) Warnf(string, ...any) {}

// bookExpertLogger adapts *logger.Logger (github.com/book-expert/logger) to
// Logger by forwarding to its Warn method.
type bookExpertLogger struct {
	log *logger.Logger
}

// FromBookExpert wraps a *logger.Logger, the file-backed structured logger
// used at the cmd/ edge, as a Logger. Passing a nil log returns Nop instead
// of a Logger that would panic on first use.
func FromBookExpert(log *logger.Logger) Logger {
	if log == nil {
		return Nop{}
	}

	return bookExpertLogger{log: log}
}

func (b bookExpertLogger) Warnf(format string, args ...any) {
	b.log.Warn(format, args...)
}
