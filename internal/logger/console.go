package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/stackforge/internal/models"
)

// ConsoleLogger logs command progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	if w == os.Stdout || w == os.Stderr {
		// fatih/color already honours NO_COLOR and non-TTY output
		return !color.NoColor
	}

	return false
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogChange logs one adjustment at INFO level.
// Format: "[HH:MM:SS] [INFO] adjusted <category>: <old> -> <new> (<reason>)"
func (cl *ConsoleLogger) LogChange(change models.Change) {
	if cl.colorOutput {
		scheme := newColorScheme()
		cl.logWithLevel("INFO", fmt.Sprintf("adjusted %s: %s -> %s (%s)",
			scheme.label.Sprint(change.Category),
			scheme.fail.Sprint(formatValues(change.Old)),
			scheme.success.Sprint(formatValues(change.New)),
			change.Reason))
		return
	}
	cl.logWithLevel("INFO", "adjusted "+change.String())
}

// LogViolation logs a violation at ERROR (hard) or WARN (soft) level.
// Format: "[HH:MM:SS] [ERROR] [<rule>] <category>: <message>"
func (cl *ConsoleLogger) LogViolation(violation models.Violation) {
	cl.logWithLevel(violationLevel(violation), violation.String())
}

// LogSummary logs the command summary at INFO level.
func (cl *ConsoleLogger) LogSummary(summary models.RunSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var output string

	header := fmt.Sprintf("=== %s Summary ===", titleCase(summary.Command))
	status := "OK"
	if !summary.OK() {
		status = "FAILED"
	}

	if cl.colorOutput {
		scheme := newColorScheme()
		output = fmt.Sprintf("[%s] %s\n", ts, color.New(color.Bold).Sprint(header))
		if summary.Project != "" {
			output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Project", summary.Project, scheme))
		}
		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Adjustments", summary.Changes, scheme))
		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedCount("Errors", summary.HardViolations, scheme.fail, scheme))
		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedCount("Warnings", summary.SoftViolations, scheme.warn, scheme))
		if summary.Output != "" {
			output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Written", summary.Output, scheme))
		}
		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Duration", formatDuration(summary.Duration), scheme))
		if summary.OK() {
			output += fmt.Sprintf("[%s] Status: %s\n", ts, scheme.success.Sprint(status))
		} else {
			output += fmt.Sprintf("[%s] Status: %s\n", ts, scheme.fail.Sprint(status))
		}
	} else {
		output = fmt.Sprintf("[%s] %s\n", ts, header)
		if summary.Project != "" {
			output += fmt.Sprintf("[%s] Project: %s\n", ts, summary.Project)
		}
		output += fmt.Sprintf("[%s] Adjustments: %d\n", ts, summary.Changes)
		output += fmt.Sprintf("[%s] Errors: %d\n", ts, summary.HardViolations)
		output += fmt.Sprintf("[%s] Warnings: %d\n", ts, summary.SoftViolations)
		if summary.Output != "" {
			output += fmt.Sprintf("[%s] Written: %s\n", ts, summary.Output)
		}
		output += fmt.Sprintf("[%s] Duration: %s\n", ts, formatDuration(summary.Duration))
		output += fmt.Sprintf("[%s] Status: %s\n", ts, status)
	}

	cl.writer.Write([]byte(output))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration renders short durations in milliseconds and longer ones in seconds
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
}

func formatValues(values []string) string {
	if len(values) == 1 {
		return values[0]
	}
	return "[" + strings.Join(values, ", ") + "]"
}

func titleCase(s string) string {
	if s == "" {
		return "Run"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
