// This package defines the logging functions (e.g. Info, Errorf, etc.).

package sklog

import (
	"os"
	"sync"

	"github.com/jcgregorio/slog"
)

var (
	mutex  sync.RWMutex
	logger slog.Logger = NewStdErrLogger(SLogStderr)
)

// SetLogger replaces the logger used by the package level functions. Passing
// nil discards all log output.
func SetLogger(l slog.Logger) {
	if l == nil {
		l = NewStdErrLogger(SLogNone)
	}
	mutex.Lock()
	defer mutex.Unlock()
	logger = l
}

func current() slog.Logger {
	mutex.RLock()
	defer mutex.RUnlock()
	return logger
}

// Functions to log at various levels.
// Debug, Info, Warning, Error, and Fatal use fmt.Sprint to format the
// arguments.
// Functions ending in f use fmt.Sprintf to format the arguments.
func Debug(msg ...interface{}) {
	current().Debug(msg...)
}

func Debugf(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

func Info(msg ...interface{}) {
	current().Info(msg...)
}

func Infof(format string, v ...interface{}) {
	current().Infof(format, v...)
}

func Warning(msg ...interface{}) {
	current().Warning(msg...)
}

func Warningf(format string, v ...interface{}) {
	current().Warningf(format, v...)
}

func Error(msg ...interface{}) {
	current().Error(msg...)
}

func Errorf(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

// Fatal* exits the program after logging.
func Fatal(msg ...interface{}) {
	current().Fatal(msg...)
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	current().Fatalf(format, v...)
	os.Exit(1)
}
