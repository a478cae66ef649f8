package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDirName is the per-project directory holding config, logs and sessions
const HomeDirName = ".stackforge"

// HomeEnvVar overrides the stackforge home directory
const HomeEnvVar = "STACKFORGE_HOME"

// GetStackforgeHome returns the stackforge home directory
// Priority order:
//  1. STACKFORGE_HOME environment variable (if set)
//  2. .stackforge in the current working directory
//
// The directory is created if it doesn't exist
func GetStackforgeHome() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return GetStackforgeHomeWithRoot(cwd)
}

// GetStackforgeHomeWithRoot is GetStackforgeHome with an explicit fallback root
func GetStackforgeHomeWithRoot(root string) (string, error) {
	home := os.Getenv(HomeEnvVar)
	if home == "" {
		if root == "" {
			return "", fmt.Errorf("no home directory: set %s or run inside a project", HomeEnvVar)
		}
		home = filepath.Join(root, HomeDirName)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create stackforge home directory: %w", err)
	}
	return home, nil
}

// ResolvePath anchors a relative configured path (like ".stackforge/logs")
// under the home directory's parent, so STACKFORGE_HOME relocates it too.
// Absolute paths are returned unchanged.
func ResolvePath(home, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(HomeDirName, path)
	if err == nil && !startsWithDotDot(rel) {
		return filepath.Join(home, rel)
	}
	return path
}

func startsWithDotDot(p string) bool {
	return p == ".." || len(p) > 2 && p[:3] == ".."+string(filepath.Separator)
}
