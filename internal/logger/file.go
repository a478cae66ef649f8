package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harrison/stackforge/internal/models"
)

// FileLogger logs command events to files in .stackforge/logs/.
// It creates timestamped per-run log files, per-project logs recording the
// final stack of every snapshot written, and maintains a latest.log symlink
// pointing to the most recent run.
// It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir      string
	runLog      *os.File
	runFile     string
	projectsDir string
	logLevel    string
	mu          sync.Mutex
}

// NewFileLogger creates a new FileLogger that writes to .stackforge/logs/
// in the current working directory with log level "info".
func NewFileLogger() (*FileLogger, error) {
	logDir := filepath.Join(".stackforge", "logs")
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDir creates a new FileLogger with a custom log directory.
// Uses default log level "info".
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a new FileLogger with a custom log directory and log level.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	projectsDir := filepath.Join(logDir, "projects")
	if err := os.MkdirAll(projectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create projects directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log
	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:      logDir,
		runLog:      file,
		runFile:     runFile,
		projectsDir: projectsDir,
		logLevel:    normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== Stackforge Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// shouldLog checks if a message at the given level should be logged.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogChange records one adjustment at INFO level.
func (fl *FileLogger) LogChange(change models.Change) {
	msg := "adjusted " + change.String()
	if change.RuleID != "" {
		msg += " [" + change.RuleID + "]"
	}
	fl.logWithLevel("INFO", msg)
}

// LogViolation records a violation at ERROR or WARN level.
func (fl *FileLogger) LogViolation(violation models.Violation) {
	msg := violation.String()
	for _, s := range violation.Suggestions {
		msg += "\n    suggestion: " + s
	}
	fl.logWithLevel(violationLevel(violation), msg)
}

// LogSummary writes the closing summary block.
func (fl *FileLogger) LogSummary(summary models.RunSummary) {
	if !fl.shouldLog("info") {
		return
	}

	status := "OK"
	if !summary.OK() {
		status = "FAILED"
	}

	var b strings.Builder
	b.WriteString("\n=== Summary ===\n")
	fmt.Fprintf(&b, "Command: %s\n", summary.Command)
	if summary.Project != "" {
		fmt.Fprintf(&b, "Project: %s\n", summary.Project)
	}
	fmt.Fprintf(&b, "Adjustments: %d\n", summary.Changes)
	fmt.Fprintf(&b, "Errors: %d\n", summary.HardViolations)
	fmt.Fprintf(&b, "Warnings: %d\n", summary.SoftViolations)
	if summary.Output != "" {
		fmt.Fprintf(&b, "Written: %s\n", summary.Output)
	}
	fmt.Fprintf(&b, "Duration: %s\n", formatDuration(summary.Duration))
	fmt.Fprintf(&b, "Status: %s\n", status)

	fl.writeRunLog(b.String())
}

// LogProject appends the stack of a written snapshot to projects/<name>.log.
// Each call adds one block, so the file is the history of that project.
func (fl *FileLogger) LogProject(project models.Project) error {
	if project.Name == "" {
		return fmt.Errorf("project name is required")
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	path := filepath.Join(fl.projectsDir, sanitizeFileName(project.Name)+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open project log file: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s @ %s ===\n", project.Name, time.Now().Format(time.RFC3339))

	keys := make([]string, 0, len(project.Stack))
	for k := range project.Stack {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, formatValues(project.Stack[k]))
	}

	if len(project.Changes) > 0 {
		b.WriteString("Adjustments:\n")
		for _, c := range project.Changes {
			fmt.Fprintf(&b, "  %s\n", c.String())
		}
	}
	b.WriteString("\n")

	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write project log: %w", err)
	}
	return nil
}

// GetRunLogPath returns the path of the current run log.
func (fl *FileLogger) GetRunLogPath() string {
	return fl.runFile
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}

// sanitizeFileName keeps project names usable as file names
func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
