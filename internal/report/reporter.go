// Package report carries progress and warnings out of the core components
// without binding them to a particular console.
package report

import "github.com/kebairia/fbm/internal/logger"

// Reporter receives per-item progress from batch operations.
type Reporter interface {
	ItemStart(kind, name string)
	ItemDone(kind, name string, success bool)
	Warning(msg string, keysAndValues ...any)
}

// logReporter routes progress through the structured logger.
type logReporter struct {
	log logger.Logger
}

var _ Reporter = (*logReporter)(nil)

// NewLogReporter returns a Reporter backed by log.
func NewLogReporter(log logger.Logger) Reporter {
	return &logReporter{log: log}
}

func (r *logReporter) ItemStart(kind, name string) {
	r.log.Info(kind+" started", "name", name)
}

func (r *logReporter) ItemDone(kind, name string, success bool) {
	if success {
		r.log.Info(kind+" completed", "name", name)
		return
	}
	r.log.Error(kind+" failed", "name", name)
}

func (r *logReporter) Warning(msg string, keysAndValues ...any) {
	r.log.Warn(msg, keysAndValues...)
}

// Discard is a Reporter that drops everything. Useful in tests.
var Discard Reporter = discard{}

type discard struct{}

func (discard) ItemStart(string, string)      {}
func (discard) ItemDone(string, string, bool) {}
func (discard) Warning(string, ...any)        {}
