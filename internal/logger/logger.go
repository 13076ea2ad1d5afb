// Package logger provides leveled logging stamped in exchange time.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger provides leveled logging. Timestamps use the exchange timezone so
// log lines line up with market hours and alert TIME fields.
type Logger struct {
	level  Level
	loc    *time.Location
	logger *log.Logger
}

var defaultLogger *Logger

// Init initializes the default logger with the specified level and format.
// Format "text" additionally records the caller file and line.
func Init(level string, format string) {
	var l Level
	switch strings.ToLower(level) {
	case "debug":
		l = DebugLevel
	case "info":
		l = InfoLevel
	case "warn":
		l = WarnLevel
	case "error":
		l = ErrorLevel
	default:
		l = InfoLevel
	}

	flags := 0
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}

	defaultLogger = &Logger{
		level:  l,
		loc:    ExchangeLocation(),
		logger: log.New(os.Stderr, "", flags),
	}
}

// ExchangeLocation returns the NSE trading timezone, falling back to a fixed
// +05:30 offset when the zone database is unavailable.
func ExchangeLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// SetOutput redirects the default logger, used by tests to capture output.
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.logger.SetOutput(w)
	}
}

func (l *Logger) output(tag, format string, args ...interface{}) {
	ts := time.Now().In(l.loc).Format("15:04:05.000")
	msg := fmt.Sprintf("["+ts+"] "+tag+" "+format, args...)
	_ = l.logger.Output(3, msg)
}

func Debug(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= DebugLevel {
		defaultLogger.output("[DEBUG]", format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= InfoLevel {
		defaultLogger.output("[INFO]", format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= WarnLevel {
		defaultLogger.output("[WARN]", format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= ErrorLevel {
		defaultLogger.output("[ERROR]", format, args...)
	}
}

func Fatal(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.output("[FATAL]", format, args...)
	}
	os.Exit(1)
}
