// Package debug provides conditional debug logging and development
// assertions for flexlist.
//
// Debug mode is enabled by setting the FLEXLIST_DEBUG environment variable:
//
//	FLEXLIST_DEBUG=1 flexlist browse items.jsonl
//
// When enabled, messages go to stderr through a logrus logger at debug
// level and Assert panics on failure. When disabled, Log is a no-op and a
// failed Assert is reported at error level through the standard logger
// without interrupting the caller.
package debug

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	enabled bool
	logger  = newLogger(os.Stderr)
)

func init() {
	if os.Getenv("FLEXLIST_DEBUG") != "" {
		enabled = true
		logger.SetLevel(logrus.DebugLevel)
	}
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000000"})
	return l
}

// Enabled returns whether debug mode is on.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug mode.
func SetEnabled(e bool) {
	enabled = e
	if e {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
}

// SetOutput redirects debug output, e.g. to a log file while a terminal
// UI owns stderr.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logger exposes the underlying logger so callers can attach fields.
func Logger() *logrus.Logger {
	return logger
}

// Log writes a debug message if debug mode is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Debugf(format, args...)
}

// LogTiming writes a timing message if debug mode is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.WithField("took", d).Debug(name)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("FilterItems")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		logger.WithField("took", time.Since(start)).Debugf("<- %s", name)
	}
}

// Dump logs a value with its type.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Debugf("%s: %T = %+v", name, v, v)
}

// Assert reports a broken internal invariant. In debug mode it panics so
// the bug surfaces at its origin; otherwise it logs at error level.
func Assert(cond bool, msg string) {
	if cond {
		return
	}
	logger.WithField("assertion", msg).Error("internal inconsistency")
	if enabled {
		panic(fmt.Sprintf("debug assertion failed: %s", msg))
	}
}

// Assertf is Assert with a formatted message. The message is only
// formatted when cond is false.
func Assertf(cond bool, format string, args ...any) {
	if cond {
		return
	}
	Assert(false, fmt.Sprintf(format, args...))
}

// AssertNoError reports a non-nil err as an internal inconsistency.
func AssertNoError(err error, context string) {
	if err == nil {
		return
	}
	Assert(false, fmt.Sprintf("%s: %v", context, err))
}
