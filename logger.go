package locator

// Logger defines the interface for structured logging used by the locator and
// its observers. Arguments are key-value pairs:
//
//	logger.Info("service registered", "key", key)
//
// The signature is compatible with log/slog, zap's SugaredLogger (Infow and
// friends) and most other structured loggers through a thin adapter.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
