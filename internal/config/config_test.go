package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != ".stackforge/logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, ".stackforge/logs")
	}
	if cfg.CollectAll {
		t.Error("CollectAll = true, want false")
	}
	if cfg.Server.Addr != ":8787" {
		t.Errorf("Server.Addr = %q, want :8787", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `log_level: debug
log_dir: /tmp/logs
collect_all: true
defaults:
  backend: fastify
  frontend: [svelte, native-unistyles]
  addons: []
server:
  addr: 127.0.0.1:9000
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogDir != "/tmp/logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/tmp/logs")
	}
	if !cfg.CollectAll {
		t.Error("CollectAll = false, want true")
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	// Unset server keys keep their defaults
	if cfg.Server.SessionDB != ".stackforge/sessions.db" {
		t.Errorf("Server.SessionDB = %q, want default", cfg.Server.SessionDB)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	s := cfg.DefaultState()
	if s.Value(stack.Backend) != "fastify" {
		t.Errorf("backend default = %s, want fastify", s.Value(stack.Backend))
	}
	if !s.Get(stack.Frontend).Equal(stack.Of("svelte", "native-unistyles")) {
		t.Errorf("frontend default = %v", s.Get(stack.Frontend))
	}
	if len(s.Get(stack.Addons)) != 0 {
		t.Errorf("addons default = %v, want empty", s.Get(stack.Addons))
	}
	if s.Value(stack.Runtime) != "bun" {
		t.Errorf("unconfigured runtime = %s, want bun", s.Value(stack.Runtime))
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info (default)", cfg.LogLevel)
	}
}

// TestLoadConfigMalformed tests that invalid YAML is reported
func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

// TestLoadConfigExplicitZero tests that an explicit zero in the server section wins
func TestLoadConfigExplicitZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  keep_sessions_days: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.KeepSessionsDays != 0 {
		t.Errorf("KeepSessionsDays = %d, want 0", cfg.Server.KeepSessionsDays)
	}
	if cfg.Server.Addr != ":8787" {
		t.Errorf("Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".stackforge"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".stackforge", "config.yaml"), []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "trace"
	collect := true
	addr := ":9999"

	cfg.MergeWithFlags(&level, nil, &collect, &addr, nil)

	if cfg.LogLevel != "trace" || !cfg.CollectAll || cfg.Server.Addr != ":9999" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.LogDir != ".stackforge/logs" {
		t.Errorf("nil flag overrode LogDir: %q", cfg.LogDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"unknown category", func(c *Config) { c.Defaults = models.FromStack(map[string][]string{"colour": {"red"}}) }, "unknown category"},
		{"value outside domain", func(c *Config) { c.Defaults = models.FromStack(map[string][]string{"backend": {"rails"}}) }, "not a valid value"},
		{"two values for single", func(c *Config) { c.Defaults = models.FromStack(map[string][]string{"runtime": {"bun", "node"}}) }, "exactly one value"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"negative retention", func(c *Config) { c.Server.KeepSessionsDays = -1 }, "keep_sessions_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetStackforgeHome(t *testing.T) {
	t.Run("env var wins", func(t *testing.T) {
		custom := t.TempDir()
		t.Setenv(HomeEnvVar, custom)
		home, err := GetStackforgeHomeWithRoot(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if home != custom {
			t.Errorf("home = %q, want %q", home, custom)
		}
	})

	t.Run("root fallback is created", func(t *testing.T) {
		t.Setenv(HomeEnvVar, "")
		root := t.TempDir()
		home, err := GetStackforgeHomeWithRoot(root)
		if err != nil {
			t.Fatal(err)
		}
		if home != filepath.Join(root, ".stackforge") {
			t.Errorf("home = %q", home)
		}
		if info, err := os.Stat(home); err != nil || !info.IsDir() {
			t.Errorf("home directory not created: %v", err)
		}
	})

	t.Run("no root", func(t *testing.T) {
		t.Setenv(HomeEnvVar, "")
		if _, err := GetStackforgeHomeWithRoot(""); err == nil {
			t.Error("expected error without env var or root")
		}
	})
}

func TestResolvePath(t *testing.T) {
	home := filepath.Join("/srv", "forge")
	tests := map[string]string{
		".stackforge/logs":        filepath.Join(home, "logs"),
		".stackforge/sessions.db": filepath.Join(home, "sessions.db"),
		"/var/log/forge":          "/var/log/forge",
		"logs":                    "logs",
		"":                        "",
	}
	for in, want := range tests {
		if got := ResolvePath(home, in); got != want {
			t.Errorf("ResolvePath(%q) = %q, want %q", in, got, want)
		}
	}
}
