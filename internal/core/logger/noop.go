package logger

import "context"

// noopLogger drops every entry. It serves until Initialize installs a real
// backend, so packages may log from init code and tests without setup.
type noopLogger struct{}

func (noopLogger) Log(context.Context, LogEntry) {}

func (noopLogger) Shutdown(context.Context) error {
	return nil
}
