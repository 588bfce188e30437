package ports

import "context"

// GitInfo holds git working-copy context stamped on focus records.
type GitInfo struct {
	Branch     string
	Commit     string
	CommitMsg  string
	Repository string
}

// GitDetector detects git context for the current working directory.
// This is a driven port (implemented by adapters).
type GitDetector interface {
	// Detect scans the given directory (or the cwd when empty) for git
	// context.
	Detect(ctx context.Context, workingDir string) (*GitInfo, error)

	// IsAvailable reports whether the directory is inside a git repository.
	IsAvailable() bool
}
