// Package logger provides leveled logging for the todo server with a
// console/syslog backend and a file backend in the configured log folder.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/op/go-logging"
	"github.com/sessiontodo/todo/config"
)

const (
	module      = "todo"
	logFileName = "todo.log"
	timeFormat  = "2006/01/02 15:04:05"
)

var (
	// Until InitLogger runs, messages go to go-logging's default stderr backend.
	logger  = logging.MustGetLogger(module)
	logFile *os.File
)

// InitLogger initializes dual logging backends: console/syslog and file.
// Console logging uses the specified level, file logging always uses DEBUG level.
func InitLogger(level logging.Level) {
	newLogger := logging.MustGetLogger(module)
	backends := make([]logging.Backend, 0, 2)

	if consoleBackend := initDefaultBackend(); consoleBackend != nil {
		leveledBackend := logging.AddModuleLevel(consoleBackend)
		leveledBackend.SetLevel(level, module)
		backends = append(backends, leveledBackend)
	}

	if fileBackend := initFileBackend(); fileBackend != nil {
		leveledBackend := logging.AddModuleLevel(fileBackend)
		leveledBackend.SetLevel(logging.DEBUG, module)
		backends = append(backends, leveledBackend)
	}

	newLogger.SetBackend(logging.MultiLogger(backends...))
	logger = newLogger
}

// LevelFromConfig maps the configured level name onto a go-logging level.
func LevelFromConfig(l config.LogLevel) (logging.Level, error) {
	switch l {
	case config.Debug:
		return logging.DEBUG, nil
	case config.Info:
		return logging.INFO, nil
	case config.Notice:
		return logging.NOTICE, nil
	case config.Warn:
		return logging.WARNING, nil
	case config.Error:
		return logging.ERROR, nil
	}
	return 0, fmt.Errorf("unknown log level: %s", l)
}

// initDefaultBackend creates the console/syslog logging backend.
// Windows uses stderr directly; elsewhere syslog is tried first.
func initDefaultBackend() logging.Backend {
	var backend logging.Backend
	includeTime := false

	if runtime.GOOS == "windows" {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
		includeTime = true
	} else {
		if syslogBackend, err := logging.NewSyslogBackend(""); err != nil {
			fmt.Fprintf(os.Stderr, "syslog backend disabled: %v\n", err)
			backend = logging.NewLogBackend(os.Stderr, "", 0)
			includeTime = os.Getppid() > 0
		} else {
			backend = syslogBackend
		}
	}

	return logging.NewBackendFormatter(backend, newFormatter(includeTime))
}

// initFileBackend opens (and truncates) the log file in the log folder.
func initFileBackend() logging.Backend {
	logDir := config.GetLogFolder()
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log folder %s: %v\n", logDir, err)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o660)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", logPath, err)
		return nil
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	backend := logging.NewLogBackend(file, "", 0)
	return logging.NewBackendFormatter(backend, newFormatter(true))
}

func newFormatter(withTime bool) logging.Formatter {
	format := `%{level} - %{message}`
	if withTime {
		format = `%{time:` + timeFormat + `} %{level} - %{message}`
	}
	return logging.MustStringFormatter(format)
}

// CloseLogger closes the log file. Should be called during shutdown.
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Debug logs a debug message to all backends.
func Debug(args ...any) {
	logger.Debug(args...)
}

// Debugf logs a formatted debug message to all backends.
func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

// Info logs an info message to all backends.
func Info(args ...any) {
	logger.Info(args...)
}

// Infof logs a formatted info message to all backends.
func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

// Notice logs a notice message to all backends.
func Notice(args ...any) {
	logger.Notice(args...)
}

// Noticef logs a formatted notice message to all backends.
func Noticef(format string, args ...any) {
	logger.Noticef(format, args...)
}

// Warning logs a warning message to all backends.
func Warning(args ...any) {
	logger.Warning(args...)
}

// Warningf logs a formatted warning message to all backends.
func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

// Error logs an error message to all backends.
func Error(args ...any) {
	logger.Error(args...)
}

// Errorf logs a formatted error message to all backends.
func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
