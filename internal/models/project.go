package models

import (
	"errors"
	"time"
)

// SnapshotVersion is the current version of the persisted project document
const SnapshotVersion = 1

// Project is the persisted configuration snapshot of a generated project.
// Stack maps every category ID to its selection; single-value categories
// are stored as a one-element list.
type Project struct {
	Version    int                 // Snapshot document version
	Name       string              // Project name (directory name)
	CreatedAt  time.Time           // When the snapshot was first written
	UpdatedAt  time.Time           // Last time an add flow rewrote the snapshot
	Stack      map[string][]string // category -> selection
	Git        bool                // Initialize a git repository
	Install    bool                // Install dependencies after generation
	Changes    []Change            // Adjustments applied when the snapshot was produced
	SourceFile string              // File the snapshot was read from (not persisted)
}

// Validate checks that the snapshot has the fields every flow relies on
func (p *Project) Validate() error {
	if p.Name == "" {
		return errors.New("project name is required")
	}
	if len(p.Stack) == 0 {
		return errors.New("project stack is required")
	}
	if p.Version > SnapshotVersion {
		return errors.New("snapshot was written by a newer version of stackforge")
	}
	return nil
}
