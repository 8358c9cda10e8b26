// Package logging is a slim adaptation of go.viam.com/rdk/logging for the
// roadmap core: a small Logger interface backed by zap, used only for
// diagnostic output (component merges, the kd-tree's unbounded-metric
// warning, steering fixed-time resyncs). No operation's correctness depends on
// a logger being present; NewBlankLogger's no-op implementation is the
// default carried by every constructor in this module.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Logger is the subset of a structured logger this module needs.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l *zapLogger) Debugw(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *zapLogger) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *zapLogger) Warnw(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }

// NewLogger returns a logger that emits Info+ logs, named for the component
// that owns it.
func NewLogger(name string) Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return NewBlankLogger(name)
	}
	return &zapLogger{sugar: z.Sugar().Named(name)}
}

// NewDebugLogger returns a logger that emits Debug+ logs, named for the
// component that owns it.
func NewDebugLogger(name string) Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		return NewBlankLogger(name)
	}
	return &zapLogger{sugar: z.Sugar().Named(name)}
}

// NewTestLogger returns a logger that writes to the test's own output.
func NewTestLogger(tb testing.TB) Logger {
	return &zapLogger{sugar: zaptest.NewLogger(tb).Sugar()}
}

type blankLogger struct{}

func (blankLogger) Debugw(string, ...interface{}) {}
func (blankLogger) Infow(string, ...interface{})  {}
func (blankLogger) Warnw(string, ...interface{})  {}

// NewBlankLogger returns a Logger that discards everything. It is the
// default logger every constructor in this module carries until a caller
// supplies one of its own.
func NewBlankLogger(name string) Logger {
	return blankLogger{}
}
