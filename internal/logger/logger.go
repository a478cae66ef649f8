// Package logger provides logging implementations for stackforge runs.
//
// Loggers record the rewrites adjustment applied, the violations validation
// found and a closing summary for each command. Implementations are
// thread-safe and write to the console, to run log files, or both.
package logger

import (
	"strings"

	"github.com/harrison/stackforge/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is what commands and the HTTP server log through
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)

	LogChange(change models.Change)
	LogViolation(violation models.Violation)
	LogSummary(summary models.RunSummary)
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// violationLevel is the level a violation is logged at: hard ones are
// errors, soft ones warnings
func violationLevel(v models.Violation) string {
	if v.IsHard() {
		return "ERROR"
	}
	return "WARN"
}

// MultiLogger fans every call out to several loggers
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers; nil entries are skipped
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogChange(change models.Change) {
	for _, l := range m.loggers {
		l.LogChange(change)
	}
}

func (m *MultiLogger) LogViolation(violation models.Violation) {
	for _, l := range m.loggers {
		l.LogViolation(violation)
	}
}

func (m *MultiLogger) LogSummary(summary models.RunSummary) {
	for _, l := range m.loggers {
		l.LogSummary(summary)
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogChange(models.Change) {}
func (n *NoOpLogger) LogViolation(models.Violation) {}
func (n *NoOpLogger) LogSummary(models.RunSummary) {}
