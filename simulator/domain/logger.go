package domain

import (
	"fmt"
	"log"
)

// Logger defines the contract for logging operations with different severity levels.
type Logger interface {
	// Info logs an informational message with optional formatted arguments.
	Info(msg string, args ...interface{})
	// Error logs an error message with optional formatted arguments.
	Error(msg string, args ...interface{})
}

const deviceTagLength = 8

// StdLogger writes levelled lines through a standard logger, tagged with the
// short form of the device they belong to.
type StdLogger struct {
	logger *log.Logger
	tag    string
}

// Info logs an informational message with INFO prefix.
func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.print("INFO", msg, args)
}

// Error logs an error message with ERROR prefix.
func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.print("ERROR", msg, args)
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	l.logger.Printf("%s: [%s] %s", level, l.tag, fmt.Sprintf(msg, args...))
}

// NewStdLogger creates a StdLogger for device on top of the provided standard logger.
func NewStdLogger(l *log.Logger, device DeviceID) *StdLogger {
	tag := string(device)
	if len(tag) > deviceTagLength {
		tag = tag[:deviceTagLength]
	}
	return &StdLogger{logger: l, tag: tag}
}
