// Package logging provides the small leveled-logger seam the rest of this
// module writes through, in the style of pktd's package-level `log` var
// (pktwallet/wallet/createtx.go): callers import the package and call
// logging.Infof/logging.Debugf/... directly, and a host process wires up the real
// backend once at startup via SetLogger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jrick/logrotate/rotator"
)

// Logger is the leveled logging surface every package in this module writes
// through. A no-op implementation is installed by default so library code
// never needs a nil check; hosts that want output call SetLogger with a
// real backend (see NewFileLogger).
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var current Logger = disabledLogger{}

// SetLogger installs l as the package-wide logger. Passing nil restores the
// no-op default.
func SetLogger(l Logger) {
	if l == nil {
		l = disabledLogger{}
	}
	current = l
}

func Tracef(format string, args ...interface{}) { current.Tracef(format, args...) }
func Debugf(format string, args ...interface{}) { current.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { current.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { current.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { current.Errorf(format, args...) }

type disabledLogger struct{}

func (disabledLogger) Tracef(string, ...interface{}) {}
func (disabledLogger) Debugf(string, ...interface{}) {}
func (disabledLogger) Infof(string, ...interface{})  {}
func (disabledLogger) Warnf(string, ...interface{})  {}
func (disabledLogger) Errorf(string, ...interface{}) {}

// Level controls which calls a levelLogger actually writes.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

// levelLogger writes leveled, prefixed lines to an io.Writer using the
// stdlib log.Logger for timestamp formatting, filtered by a minimum Level.
type levelLogger struct {
	level Level
	out   *log.Logger
}

func (l *levelLogger) logf(lvl Level, prefix, format string, args ...interface{}) {
	if lvl < l.level {
		return
	}
	l.out.Output(3, prefix+" "+fmt.Sprintf(format, args...))
}

func (l *levelLogger) Tracef(format string, args ...interface{}) { l.logf(LevelTrace, "TRC", format, args...) }
func (l *levelLogger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, "DBG", format, args...) }
func (l *levelLogger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, "INF", format, args...) }
func (l *levelLogger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, "WRN", format, args...) }
func (l *levelLogger) Errorf(format string, args ...interface{}) { l.logf(LevelError, "ERR", format, args...) }

// NewWriterLogger builds a Logger that writes level-prefixed lines to w,
// filtering out anything below minLevel. Used directly for stderr/stdout
// logging, and by NewFileLogger to write into its rotator.
func NewWriterLogger(w io.Writer, minLevel Level) Logger {
	return &levelLogger{level: minLevel, out: log.New(w, "", log.Ldate|log.Ltime)}
}

// NewFileLogger opens (creating if needed) a size-rotated log file at path
// using jrick/logrotate, mirroring pktd's own log-rotation setup, and
// returns a Logger writing to it. maxRollKB is the size threshold in
// kilobytes at which the rotator starts a fresh file, keeping maxRolls old
// files around with a numeric suffix.
func NewFileLogger(path string, maxRollKB int64, maxRolls int, minLevel Level) (Logger, func() error, error) {
	r, err := rotator.New(path, maxRollKB, false, maxRolls)
	if err != nil {
		return nil, nil, err
	}
	return NewWriterLogger(r, minLevel), r.Close, nil
}

// NewStderrLogger is a convenience constructor for the common "just log to
// stderr" case used by cmd/segop-cli.
func NewStderrLogger(minLevel Level) Logger {
	return NewWriterLogger(os.Stderr, minLevel)
}
