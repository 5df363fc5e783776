package patch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/colonyops/redline/internal/core/git"
)

// Applier mutates a session's working copy and records each approved chunk as
// one commit in the session repository. The working copy is owned exclusively
// by the active session; nothing else writes to it.
type Applier struct {
	log         zerolog.Logger
	repo        git.Repo
	dir         string // session directory (repository root)
	workingFile string // working copy filename relative to dir
}

// NewApplier creates an applier for the session rooted at dir.
func NewApplier(log zerolog.Logger, repo git.Repo, dir, workingFile string) *Applier {
	return &Applier{log: log, repo: repo, dir: dir, workingFile: workingFile}
}

// WorkingPath returns the absolute path of the working copy.
func (a *Applier) WorkingPath() string {
	return filepath.Join(a.dir, a.workingFile)
}

// ApplyWorking replaces original with replacement in the working copy without
// committing. Returns ErrAnchorNotFound when the text has drifted away.
func (a *Applier) ApplyWorking(original, replacement string) error {
	return ApplyToFile(a.WorkingPath(), original, replacement)
}

// CommitChunk stages the working copy and records the chunk application as a
// single commit. A failed commit must abort the enclosing approval; the chunk
// is not considered applied.
func (a *Applier) CommitChunk(ctx context.Context, chunkID string) error {
	if err := a.repo.Add(ctx, a.dir, a.workingFile); err != nil {
		return err
	}
	if err := a.repo.Commit(ctx, a.dir, fmt.Sprintf("Applied %s", chunkID)); err != nil {
		return err
	}
	a.log.Debug().Str("chunk", chunkID).Msg("committed chunk application")
	return nil
}

// Rollback restores the working copy to its state before the last commit and
// records the revert as a new commit. It undoes at most one step; calling it
// on a repository holding only the session-start commit is an error.
func (a *Applier) Rollback(ctx context.Context) error {
	count, err := a.repo.RevCount(ctx, a.dir)
	if err != nil {
		return err
	}
	if count < 2 {
		return fmt.Errorf("nothing to roll back")
	}

	if err := a.repo.CheckoutPathAt(ctx, a.dir, "HEAD~1", a.workingFile); err != nil {
		return err
	}
	if err := a.repo.Add(ctx, a.dir, a.workingFile); err != nil {
		return err
	}
	if err := a.repo.Commit(ctx, a.dir, "Rollback last chunk"); err != nil {
		return err
	}
	a.log.Debug().Msg("rolled back last chunk application")
	return nil
}

// LastDiff returns the unified diff of the most recent commit against its
// parent, limited to the working copy. Before any chunk has been applied the
// diff is empty.
func (a *Applier) LastDiff(ctx context.Context) (string, error) {
	count, err := a.repo.RevCount(ctx, a.dir)
	if err != nil {
		return "", err
	}
	if count < 2 {
		return "", nil
	}
	return a.repo.DiffRange(ctx, a.dir, "HEAD~1", "HEAD", a.workingFile)
}
