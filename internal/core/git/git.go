// Package git provides the version-control side channel for session
// workspaces. Each session directory is an independent repository; only
// init, identity configuration, add/commit, diff, and single-path checkout
// are ever used.
package git

import "context"

// Repo defines the repository operations needed by redline sessions.
type Repo interface {
	// Init initializes a new repository rooted at dir.
	Init(ctx context.Context, dir string) error
	// SetIdentity configures the committer name and email for dir, so
	// commits work without global git configuration.
	SetIdentity(ctx context.Context, dir, name, email string) error
	// Add stages the given paths in dir.
	Add(ctx context.Context, dir string, paths ...string) error
	// Commit records staged changes in dir with the given message.
	Commit(ctx context.Context, dir, message string) error
	// DiffRange returns the unified diff of path between two revisions.
	DiffRange(ctx context.Context, dir, from, to, path string) (string, error)
	// CheckoutPathAt restores path in dir to its content at rev.
	CheckoutPathAt(ctx context.Context, dir, rev, path string) error
	// RevCount returns the number of commits reachable from HEAD.
	RevCount(ctx context.Context, dir string) (int, error)
	// HasChanges returns true if path has uncommitted modifications.
	HasChanges(ctx context.Context, dir, path string) (bool, error)
}
