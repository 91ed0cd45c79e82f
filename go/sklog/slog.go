package sklog

import (
	"os"

	_logger "github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"
)

// SLogLogMode is the mode logging enum type.
type SLogLogMode int

// Types of logging that NewStdErrLogger supports.
const (
	SLogNone SLogLogMode = iota
	SLogStderr
)

// SyncWriter is a destination for NewWriterLogger.
type SyncWriter = _logger.SyncWriter

// NewStdErrLogger creates a slog.Logger that either logs to stderr, or does
// no logging, depending upon the value of mode. Debug lines are dropped. It uses
// github.com/jcgregorio/logger to implement the slog.Logger interface.
//
// Usage:
//
//	sklog.SetLogger(sklog.NewStdErrLogger(sklog.SLogStderr))
func NewStdErrLogger(mode SLogLogMode) slog.Logger {
	if mode == SLogStderr {
		return NewWriterLogger(os.Stderr, false)
	}
	return _logger.NewNopLogger()
}

// NewWriterLogger returns a slog.Logger that writes to a SyncWriter, such as
// os.Stdout or os.Stderr. Debug lines are dropped unless includeDebug is true.
func NewWriterLogger(dst SyncWriter, includeDebug bool) slog.Logger {
	return _logger.NewFromOptions(&_logger.Options{
		SyncWriter:   dst,
		DepthDelta:   2,
		IncludeDebug: includeDebug,
	})
}
