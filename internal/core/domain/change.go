package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// ChangeType is the kind of filesystem change observed on a watched path.
type ChangeType string

const (
	// ChangeAdded means the file appeared.
	ChangeAdded ChangeType = "add"

	// ChangeModified means the file content changed.
	ChangeModified ChangeType = "change"

	// ChangeRemoved means the file disappeared. It never schedules a run.
	ChangeRemoved ChangeType = "unlink"
)

// FileChange is a raw trigger reported by the change watcher.
type FileChange struct {
	Path string
	Type ChangeType
	At   time.Time
}

// Reason describes the change for history and logs.
func (c FileChange) Reason() string {
	return fmt.Sprintf("%s %s", c.Type, filepath.Base(c.Path))
}

// Triggers reports whether the change should schedule a run.
func (c FileChange) Triggers() bool {
	return c.Type == ChangeAdded || c.Type == ChangeModified
}
