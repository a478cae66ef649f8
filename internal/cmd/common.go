package cmd

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/harrison/stackforge/internal/config"
	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/logger"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/prompt"
	"github.com/harrison/stackforge/internal/stack"
)

// Overridable in tests
var (
	newPrompter   = func() prompt.Prompter { return &prompt.HuhPrompter{} }
	stdinIsTTY    = func() bool { return prompt.IsInteractive(os.Stdin) }
	newRuleEngine = func() *engine.Engine { return engine.New(nil) }
)

// loadConfig reads --config (or .stackforge/config.yaml), applies the
// persistent flags and validates the result
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var logLevel, logDir *string
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDir = &v
	}
	if cmd.Flags().Changed("verbose") {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			debug := "debug"
			logLevel = &debug
		}
	}
	cfg.MergeWithFlags(logLevel, logDir, nil, nil, nil)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// runLoggers is the console + run-log pair every command logs through
type runLoggers struct {
	logger.Logger
	file *logger.FileLogger
}

// newRunLoggers creates a console logger on stderr and, when withFile is
// set, a run log under the configured log directory
func newRunLoggers(cmd *cobra.Command, cfg *config.Config, withFile bool) (*runLoggers, error) {
	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if !withFile {
		return &runLoggers{Logger: console}, nil
	}

	home, err := config.GetStackforgeHome()
	if err != nil {
		return nil, err
	}
	fileLog, err := logger.NewFileLoggerWithDirAndLevel(config.ResolvePath(home, cfg.LogDir), cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	return &runLoggers{Logger: logger.NewMultiLogger(console, fileLog), file: fileLog}, nil
}

// LogProject records a written snapshot in the run log directory
func (l *runLoggers) LogProject(p *models.Project) {
	if l.file == nil || p == nil {
		return
	}
	if err := l.file.LogProject(*p); err != nil {
		l.LogWarn(fmt.Sprintf("failed to write project log: %v", err))
	}
}

func (l *runLoggers) Close() {
	if l.file != nil {
		l.file.Close()
	}
}

// flagName turns a category ID into its flag spelling (dbSetup -> db-setup)
func flagName(id stack.CategoryID) string {
	var b strings.Builder
	for i, r := range string(id) {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// addStackFlags registers one flag per category. Set categories take a
// comma separated list.
func addStackFlags(cmd *cobra.Command) {
	for _, c := range stack.Categories() {
		usage := fmt.Sprintf("%s (%s)", c.Label, strings.Join(c.Domain, ", "))
		if c.IsSet() {
			cmd.Flags().StringSlice(flagName(c.ID), nil, usage)
		} else {
			cmd.Flags().String(flagName(c.ID), "", usage)
		}
	}
}

// stackFlags returns the selections given on the command line. Every
// category that appears is pinned.
func stackFlags(cmd *cobra.Command) (map[stack.CategoryID]stack.Selection, error) {
	out := make(map[stack.CategoryID]stack.Selection)
	for _, c := range stack.Categories() {
		name := flagName(c.ID)
		if !cmd.Flags().Changed(name) {
			continue
		}
		var values []string
		if c.IsSet() {
			values, _ = cmd.Flags().GetStringSlice(name)
		} else {
			v, _ := cmd.Flags().GetString(name)
			values = []string{v}
		}
		for i, v := range values {
			values[i] = strings.TrimSpace(v)
			if !c.InDomain(values[i]) {
				return nil, fmt.Errorf("--%s: %q is not a valid %s option (choose from %s)",
					name, values[i], c.Label, strings.Join(c.Domain, ", "))
			}
		}
		out[c.ID] = stack.Normalize(c.ID, stack.Of(values...))
	}
	return out, nil
}

// validateMode picks the reporting mode: fail-fast unless collect-all was
// requested by flag or config
func validateMode(cmd *cobra.Command, cfg *config.Config) engine.Mode {
	if cmd.Flags().Lookup("collect-all") != nil && cmd.Flags().Changed("collect-all") {
		all, _ := cmd.Flags().GetBool("collect-all")
		if all {
			return engine.CollectAll
		}
		return engine.FailFast
	}
	if cfg.CollectAll {
		return engine.CollectAll
	}
	return engine.FailFast
}
