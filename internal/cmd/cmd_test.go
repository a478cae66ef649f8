package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/harrison/stackforge/internal/config"
	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/prompt"
	"github.com/harrison/stackforge/internal/snapshot"
	"github.com/harrison/stackforge/internal/stack"
)

func init() {
	color.NoColor = true
}

// executeCommand runs the root command with a private home directory and
// no config file, returning stdout and stderr separately
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)

	root := NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(append([]string{"--config", filepath.Join(home, "none.yaml")}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func readProject(t *testing.T, path string) (*models.Project, stack.State) {
	t.Helper()
	p, s, err := snapshot.Read(path)
	if err != nil {
		t.Fatalf("failed to read snapshot %s: %v", path, err)
	}
	return p, s
}

func writeSnapshot(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, snapshot.FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "--help")
	if err != nil {
		t.Fatalf("--help returned error: %v", err)
	}
	if !strings.Contains(stdout, "stackforge") {
		t.Errorf("help should mention stackforge, got: %s", stdout)
	}
	for _, sub := range []string{"create", "validate", "add", "check", "rules", "serve"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("help should list %s subcommand", sub)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("--version returned error: %v", err)
	}
	if !strings.Contains(stdout, Version) {
		t.Errorf("expected version %q in output, got: %s", Version, stdout)
	}
}

func TestFlagName(t *testing.T) {
	tests := []struct {
		id   stack.CategoryID
		want string
	}{
		{stack.Frontend, "frontend"},
		{stack.DBSetup, "db-setup"},
		{stack.PackageManager, "package-manager"},
		{stack.WebDeploy, "web-deploy"},
		{stack.API, "api"},
	}
	for _, tt := range tests {
		if got := flagName(tt.id); got != tt.want {
			t.Errorf("flagName(%s) = %q, want %q", tt.id, got, tt.want)
		}
		if id, ok := stack.ParseCategoryID(flagName(tt.id)); !ok || id != tt.id {
			t.Errorf("flag %q does not parse back to %s", flagName(tt.id), tt.id)
		}
	}
}

func TestCreate_WritesAdjustedSnapshot(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, err := executeCommand(t, "create", "demo", "--dir", dir, "--frontend", "nuxt")
	if err != nil {
		t.Fatalf("create failed: %v\n%s", err, stdout)
	}

	if !strings.Contains(stdout, "tRPC API requires React-based frontends.") {
		t.Errorf("expected the api adjustment to be reported, got: %s", stdout)
	}
	if !strings.Contains(stdout, "✓ Wrote") {
		t.Errorf("expected write confirmation, got: %s", stdout)
	}
	if !strings.Contains(stderr, "Create Summary") {
		t.Errorf("expected summary on stderr, got: %s", stderr)
	}

	p, s := readProject(t, snapshot.Path(dir, "demo"))
	if p.Name != "demo" || !p.Git || !p.Install {
		t.Errorf("unexpected project header: %+v", p)
	}
	if !s.Is(stack.API, "orpc") || !s.Has(stack.Frontend, stack.Nuxt) {
		t.Errorf("unexpected stack: %s", s)
	}
	if len(p.Changes) == 0 {
		t.Error("adjustments should be recorded in the snapshot")
	}

	projectLog := filepath.Join(os.Getenv(config.HomeEnvVar), "logs", "projects", "demo.log")
	if _, err := os.Stat(projectLog); err != nil {
		t.Errorf("expected project log at %s: %v", projectLog, err)
	}
}

func TestCreate_RejectsPinnedConflict(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := executeCommand(t, "create", "demo", "--dir", dir, "--frontend", "nuxt", "--api", "trpc")

	var verr *engine.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *engine.ValidationError, got %v", err)
	}
	if !strings.Contains(stdout, "tRPC API requires React-based frontends.") {
		t.Errorf("expected diagnostic, got: %s", stdout)
	}
	if _, err := os.Stat(snapshot.Path(dir, "demo")); !os.IsNotExist(err) {
		t.Error("nothing should be written when validation fails")
	}
}

func TestCreate_ConvexWithPinnedDatabaseProvider(t *testing.T) {
	stdout, _, err := executeCommand(t, "create", "app", "--dry-run",
		"--backend", "convex", "--database", "postgres", "--db-setup", "prisma-postgres")

	if engine.IsUnsatisfiable(err) {
		t.Fatalf("incompatible flags must be reported as violations, got %v", err)
	}
	if !engine.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(stdout, "Convex provides its own database") {
		t.Errorf("expected convex diagnostic, got: %s", stdout)
	}
}

func TestCreate_CollectAll(t *testing.T) {
	args := []string{"create", "demo", "--dry-run", "--frontend", "nuxt", "--api", "trpc", "--auth", "clerk"}

	_, _, err := executeCommand(t, args...)
	var failFast *engine.ValidationError
	if !errors.As(err, &failFast) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := models.CountHard(failFast.Violations); n != 1 {
		t.Errorf("fail-fast should report 1 violation, got %d", n)
	}

	_, _, err = executeCommand(t, append(args, "--collect-all")...)
	var all *engine.ValidationError
	if !errors.As(err, &all) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := models.CountHard(all.Violations); n < 2 {
		t.Errorf("collect-all should report every violation, got %d", n)
	}
}

func TestCreate_Yolo(t *testing.T) {
	stdout, _, err := executeCommand(t, "create", "demo", "--dry-run", "--yolo", "--frontend", "nuxt", "--api", "trpc")
	if err != nil {
		t.Fatalf("--yolo should skip the rules: %v", err)
	}
	if !strings.Contains(stdout, "Dry run") {
		t.Errorf("expected dry run notice, got: %s", stdout)
	}
	if strings.Contains(stdout, "adjustment") {
		t.Errorf("--yolo should not adjust anything, got: %s", stdout)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad value", []string{"create", "demo", "--backend", "rails"}, "not a valid Backend option"},
		{"bad name", []string{"create", "../demo"}, "invalid project name"},
		{"yolo interactive", []string{"create", "demo", "--yolo", "-i"}, "cannot be combined"},
		{"missing name", []string{"create"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreate_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := executeCommand(t, "create", "demo", "--dir", dir); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, _, err := executeCommand(t, "create", "demo", "--dir", dir)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}
}

// echoPrompter keeps every current value and records the titles asked
type echoPrompter struct {
	asked []string
}

func (p *echoPrompter) Select(title string, _ []prompt.Choice, current string) (string, error) {
	p.asked = append(p.asked, title)
	return current, nil
}

func (p *echoPrompter) MultiSelect(title string, _ []prompt.Choice, current []string) ([]string, error) {
	p.asked = append(p.asked, title)
	return current, nil
}

func TestCreate_Interactive(t *testing.T) {
	fake := &echoPrompter{}
	origPrompter, origTTY := newPrompter, stdinIsTTY
	newPrompter = func() prompt.Prompter { return fake }
	stdinIsTTY = func() bool { return true }
	defer func() { newPrompter, stdinIsTTY = origPrompter, origTTY }()

	dir := t.TempDir()
	_, _, err := executeCommand(t, "create", "demo", "--dir", dir, "-i", "--backend", "hono")
	if err != nil {
		t.Fatalf("interactive create failed: %v", err)
	}

	for _, title := range fake.asked {
		if title == "Backend" {
			t.Error("pinned backend should not be asked")
		}
	}
	if len(fake.asked) == 0 || fake.asked[0] != "Frontend (web)" {
		t.Errorf("expected the frontend to be asked first, got %v", fake.asked)
	}

	_, s := readProject(t, snapshot.Path(dir, "demo"))
	if !s.Equal(stack.Defaults()) {
		t.Errorf("keeping every default should write the defaults, got %s", s)
	}
}

func TestCreate_InteractiveNeedsTerminal(t *testing.T) {
	orig := stdinIsTTY
	stdinIsTTY = func() bool { return false }
	defer func() { stdinIsTTY = orig }()

	_, _, err := executeCommand(t, "create", "demo", "--dry-run", "-i")
	if err == nil || !strings.Contains(err.Error(), "requires a terminal") {
		t.Errorf("expected terminal error, got %v", err)
	}
}

const unsupportedSnapshot = `version: 1
project_name: legacy
created_at: 2026-01-02T03:04:05Z
stack:
  frontend: nuxt
  api: trpc
git: true
install: false
`

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := executeCommand(t, "create", "demo", "--dir", dir); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stdout, _, err := executeCommand(t, "validate", filepath.Join(dir, "demo"))
	if err != nil {
		t.Fatalf("validate failed on a created project: %v", err)
	}
	if !strings.Contains(stdout, "supported configuration") {
		t.Errorf("expected success message, got: %s", stdout)
	}

	bad := writeSnapshot(t, t.TempDir(), unsupportedSnapshot)
	stdout, _, err = executeCommand(t, "validate", bad)
	if err == nil || !strings.Contains(err.Error(), "incompatibilities found") {
		t.Errorf("expected incompatibilities error, got %v", err)
	}
	if !strings.Contains(stdout, "tRPC API requires React-based frontends.") {
		t.Errorf("expected diagnostic, got: %s", stdout)
	}

	_, _, err = executeCommand(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "no stackforge.yaml found") {
		t.Errorf("expected missing file error, got %v", err)
	}
}

func TestValidate_SeveralPaths(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := executeCommand(t, "create", "demo", "--dir", dir); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	good := filepath.Join(dir, "demo")

	stdout, _, err := executeCommand(t, "validate", good, good)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(stdout, "[2/2]") || !strings.Contains(stdout, "2 snapshots supported") {
		t.Errorf("expected progress output, got: %s", stdout)
	}

	bad := writeSnapshot(t, t.TempDir(), unsupportedSnapshot)
	stdout, _, err = executeCommand(t, "validate", good, bad)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 snapshots failed") {
		t.Errorf("expected one failure, got %v", err)
	}
	if !strings.Contains(stdout, "✗") {
		t.Errorf("expected failure marker, got: %s", stdout)
	}
}

func TestAdd(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := executeCommand(t, "create", "demo", "--dir", dir, "--frontend", "nuxt"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	project := filepath.Join(dir, "demo")

	stdout, _, err := executeCommand(t, "add", "--addons", "biome,tauri", "--dir", project)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.Contains(stdout, "✓ Addons") {
		t.Errorf("expected added addons to be reported, got: %s", stdout)
	}
	_, s := readProject(t, snapshot.Path(dir, "demo"))
	if !s.Has(stack.Addons, "biome") || !s.Has(stack.Addons, "tauri") || !s.Has(stack.Addons, "turborepo") {
		t.Errorf("unexpected addons: %s", s.Get(stack.Addons))
	}

	before, err := os.ReadFile(snapshot.Path(dir, "demo"))
	if err != nil {
		t.Fatal(err)
	}
	stdout, _, err = executeCommand(t, "add", "--addons", "pwa", "--dir", project)
	if !engine.IsValidationError(err) {
		t.Fatalf("expected validation error for pwa on nuxt, got %v", err)
	}
	if !strings.Contains(stdout, "The PWA addon is not supported with Nuxt.") {
		t.Errorf("expected diagnostic, got: %s", stdout)
	}
	after, _ := os.ReadFile(snapshot.Path(dir, "demo"))
	if !bytes.Equal(before, after) {
		t.Error("a rejected add must leave the snapshot untouched")
	}

	_, _, err = executeCommand(t, "add", "--dir", project)
	if err == nil || !strings.Contains(err.Error(), "nothing to add") {
		t.Errorf("expected nothing to add error, got %v", err)
	}
}

func TestAdd_UnsupportedSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, unsupportedSnapshot)

	_, _, err := executeCommand(t, "add", "--addons", "biome", "--dir", dir)
	if !snapshot.IsUnsupportedConfiguration(err) {
		t.Errorf("expected unsupported configuration error, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"disabled", []string{"--category", "addons", "--value", "pwa", "--frontend", "nuxt"}, "The PWA addon is not supported with Nuxt."},
		{"available", []string{"--category", "addons", "--value", "tauri"}, "available"},
		{"clerk", []string{"--category", "auth", "--value", "clerk"}, "Clerk authentication is only available with the Convex backend."},
		{"list", []string{"--category", "api", "--frontend", "svelte"}, "tRPC API requires React-based frontends."},
		{"category spelling", []string{"--category", "db_setup", "--value", "none"}, "available"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, append([]string{"check"}, tt.args...)...)
			if err != nil {
				t.Fatalf("check failed: %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("expected %q, got: %s", tt.want, stdout)
			}
		})
	}

	_, _, err := executeCommand(t, "check", "--category", "cms")
	if err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Errorf("expected unknown category error, got %v", err)
	}
}

func TestCheck_FromSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, unsupportedSnapshot)

	stdout, _, err := executeCommand(t, "check", "--category", "addons", "--value", "pwa", "--from", dir)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(stdout, "not supported with Nuxt") {
		t.Errorf("expected the snapshot frontend to be used, got: %s", stdout)
	}
}

func TestRules(t *testing.T) {
	stdout, _, err := executeCommand(t, "rules")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "# Compatibility rules") {
		t.Errorf("expected markdown heading, got: %.80s", stdout)
	}
	if !strings.Contains(stdout, "`trpc-requires-react`") {
		t.Error("expected every rule to be listed")
	}

	stdout, _, err = executeCommand(t, "rules", "--html")
	if err != nil {
		t.Fatalf("rules --html failed: %v", err)
	}
	if !strings.Contains(stdout, "<h1>Compatibility rules</h1>") || !strings.Contains(stdout, "<table>") {
		t.Errorf("expected rendered html, got: %.200s", stdout)
	}
}
