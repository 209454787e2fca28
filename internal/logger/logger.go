// Package logger provides leveled printf-style logging for the whole
// process. Components log through the package-level functions; main
// initializes the default logger once from configuration.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger writes leveled log lines to a single destination.
type Logger struct {
	level  Level
	logger *log.Logger
}

var defaultLogger = New(InfoLevel, os.Stderr, "text")

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// New creates a Logger writing to w. The "text" format includes the
// caller's file and line for local debugging.
func New(level Level, w io.Writer, format string) *Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	return &Logger{level: level, logger: log.New(w, "", flags)}
}

// Init replaces the process-wide default logger.
func Init(level string, format string) {
	defaultLogger = New(ParseLevel(level), os.Stderr, format)
}

func (l *Logger) output(level Level, tag, format string, args ...interface{}) {
	if l.level > level {
		return
	}
	_ = l.logger.Output(3, fmt.Sprintf(tag+format, args...))
}

func Debug(format string, args ...interface{}) {
	defaultLogger.output(DebugLevel, "[DEBUG] ", format, args...)
}

func Info(format string, args ...interface{}) {
	defaultLogger.output(InfoLevel, "[INFO] ", format, args...)
}

func Warn(format string, args ...interface{}) {
	defaultLogger.output(WarnLevel, "[WARN] ", format, args...)
}

func Error(format string, args ...interface{}) {
	defaultLogger.output(ErrorLevel, "[ERROR] ", format, args...)
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.output(ErrorLevel, "[FATAL] ", format, args...)
	os.Exit(1)
}
