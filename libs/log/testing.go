package log

import (
	"testing"

	"github.com/rs/zerolog"
)

// NewTestingLogger converts a testing.T into a logging interface to make test
// failures and verbose provide better feedback associated with test failures.
// This logger is safe to use from multiple goroutines, but when the test
// function completes, all output will be discarded.
//
// By default it collects only ERROR messages, or DEBUG messages if the
// verbose flag is set. These settings can be changed with NewTestingLoggerWithLevel.
func NewTestingLogger(t testing.TB) Logger {
	level := LogLevelError
	if testing.Verbose() {
		level = LogLevelDebug
	}

	return NewTestingLoggerWithLevel(t, level)
}

// NewTestingLoggerWithLevel creates a testing logger instance at a specific
// level that wraps the behavior of testing.T.Log().
func NewTestingLoggerWithLevel(t testing.TB, level string) Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		t.Fatalf("failed to parse log level (%s): %v", level, err)
	}

	return defaultLogger{
		Logger: zerolog.New(newSyncWriter(testWriter{t})).Level(logLevel),
	}
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(bz []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bz))
	return len(bz), nil
}
