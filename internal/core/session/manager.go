package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/redline/internal/core/artifact"
	"github.com/colonyops/redline/internal/core/git"
	"github.com/colonyops/redline/internal/core/project"
)

// Committer identity used for session repositories, so commits work without
// global git configuration.
const (
	gitUserName  = "redline"
	gitUserEmail = "redline@local"
)

// initialCommitMessage labels the session's rollback floor. The initial
// commit is never amended.
const initialCommitMessage = "Session start"

// Manager materializes session workspaces and task artifacts from project
// state.
type Manager struct {
	log   zerolog.Logger
	repo  git.Repo
	store Store

	// Now supplies the session creation time. Tests override it to pin
	// session ids.
	Now func() time.Time
}

// NewManager creates a session manager.
func NewManager(log zerolog.Logger, repo git.Repo, store Store) *Manager {
	return &Manager{log: log, repo: repo, store: store, Now: time.Now}
}

// Create builds a new session for the document: a version-controlled
// workspace holding an immutable original snapshot and a mutable working
// copy, plus one task artifact per actionable chunk. Lock chunks are bundled
// into each artifact's context block instead of receiving artifacts of
// their own.
//
// The session is persisted with status generating before artifact
// generation, and transitions to editing only after every artifact exists.
// Any failure leaves the persisted status at generating.
func (m *Manager) Create(ctx context.Context, sourceFile string, state *project.State) (*Session, error) {
	now := m.Now()
	id := NewID(sourceFile, now)
	dir := m.store.Dir(id)

	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("session directory %s already exists and is not empty", dir)
	}

	ext := filepath.Ext(sourceFile)
	sess := &Session{
		ID:           id,
		SourceFile:   absPath(sourceFile),
		CreatedAt:    now,
		Status:       StatusGenerating,
		OriginalFile: "original" + ext,
		WorkingFile:  "working" + ext,
		ChunksDir:    "chunks",
	}

	actionable := state.ChunksInExecutionOrder()
	if len(actionable) == 0 {
		return nil, fmt.Errorf("no actionable chunks to generate")
	}
	for _, c := range actionable {
		sess.Chunks = append(sess.Chunks, c.ID)
	}

	if err := m.initWorkspace(ctx, dir, sourceFile, sess); err != nil {
		return nil, err
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session metadata: %w", err)
	}

	locks := state.LockChunks()
	for _, c := range actionable {
		content := artifact.Generate(c, locks)
		path := filepath.Join(dir, sess.ChunkPath(c.ID))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write artifact for %s: %w", c.ID, err)
		}
		m.log.Debug().Str("chunk", c.ID).Str("path", path).Msg("generated task artifact")
	}

	sess.Status = StatusEditing
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session metadata: %w", err)
	}

	m.log.Info().
		Str("session", sess.ID).
		Int("chunks", len(sess.Chunks)).
		Msg("session created")

	return sess, nil
}

// initWorkspace creates the session directory, copies the document into the
// original and working snapshots, and records the initial commit.
func (m *Manager) initWorkspace(ctx context.Context, dir, sourceFile string, sess *Session) error {
	if err := os.MkdirAll(filepath.Join(dir, sess.ChunksDir), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	content, err := os.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("read source document: %w", err)
	}

	if err := m.repo.Init(ctx, dir); err != nil {
		return err
	}
	if err := m.repo.SetIdentity(ctx, dir, gitUserName, gitUserEmail); err != nil {
		return err
	}

	for _, name := range []string{sess.OriginalFile, sess.WorkingFile} {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			return fmt.Errorf("write snapshot %s: %w", name, err)
		}
	}

	if err := m.repo.Add(ctx, dir, "."); err != nil {
		return err
	}
	if err := m.repo.Commit(ctx, dir, initialCommitMessage); err != nil {
		return err
	}

	return nil
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
