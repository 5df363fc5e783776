package review_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/redline/internal/core/artifact"
	"github.com/colonyops/redline/internal/core/chunk"
	"github.com/colonyops/redline/internal/core/git"
	"github.com/colonyops/redline/internal/core/patch"
	"github.com/colonyops/redline/internal/core/project"
	"github.com/colonyops/redline/internal/core/review"
	"github.com/colonyops/redline/internal/core/session"
	"github.com/colonyops/redline/internal/store/yamlfile"
	"github.com/colonyops/redline/pkg/executil"
)

type fixture struct {
	dir      string
	source   string
	sess     *session.Session
	state    *project.State
	applier  *patch.Applier
	sessions *yamlfile.SessionStore
	sidecar  *yamlfile.SidecarStore
	exec     *executil.RecordingExecutor
}

// newFixture lays out a review-ready workspace: a source document, a
// session directory with working and original snapshots, and one artifact
// per chunk. Responses are appended for the chunk IDs in withResponses.
func newFixture(t *testing.T, chunks []chunk.Chunk, withResponses map[string]string) *fixture {
	t.Helper()

	dir := t.TempDir()
	source := filepath.Join(dir, "draft.md")

	content := ""
	for _, c := range chunks {
		content += c.OriginalText + "\n"
	}
	require.NoError(t, os.WriteFile(source, []byte(content), 0o644))

	sessDir := filepath.Join(dir, "sessions", "draft_20241126_143022")
	require.NoError(t, os.MkdirAll(filepath.Join(sessDir, "chunks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sessDir, "working.md"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sessDir, "original.md"), []byte(content), 0o644))

	sess := &session.Session{
		ID:           "draft_20241126_143022",
		SourceFile:   source,
		CreatedAt:    time.Date(2024, 11, 26, 14, 30, 22, 0, time.UTC),
		Status:       session.StatusEditing,
		OriginalFile: "original.md",
		WorkingFile:  "working.md",
		ChunksDir:    "chunks",
	}

	state := project.New(source, "abcd1234abcd1234")

	for _, c := range chunks {
		sess.Chunks = append(sess.Chunks, c.ID)
		state.Chunks = append(state.Chunks, c)

		path := filepath.Join(sessDir, sess.ChunkPath(c.ID))
		require.NoError(t, os.WriteFile(path, []byte(artifact.Generate(c, nil)), 0o644))

		if resp, ok := withResponses[c.ID]; ok {
			require.NoError(t, artifact.AppendResponse(path, resp))
		}
	}

	exec := &executil.RecordingExecutor{}
	repo := git.NewExecutor("git", exec)
	applier := patch.NewApplier(zerolog.Nop(), repo, sessDir, "working.md")
	sessions := yamlfile.NewSessionStore(filepath.Join(dir, "sessions"))
	sidecar := yamlfile.NewSidecarStore()

	require.NoError(t, sessions.Save(context.Background(), sess))

	return &fixture{
		dir:      dir,
		source:   source,
		sess:     sess,
		state:    state,
		applier:  applier,
		sessions: sessions,
		sidecar:  sidecar,
		exec:     exec,
	}
}

func (f *fixture) newReviewer(t *testing.T) *review.Reviewer {
	t.Helper()
	r, err := review.New(
		context.Background(),
		zerolog.Nop(),
		f.sess,
		f.state,
		f.sessions.Dir(f.sess.ID),
		f.applier,
		f.sessions,
		f.sidecar,
	)
	require.NoError(t, err)
	return r
}

func testChunks() []chunk.Chunk {
	return []chunk.Chunk{
		{
			ID:           "chunk_001",
			Range:        chunk.TextRange{Start: chunk.Location{Row: 0, Col: 0}, End: chunk.Location{Row: 0, Col: 11}},
			Category:     chunk.CategoryReplace,
			OriginalText: "Hello world.",
		},
		{
			ID:           "chunk_002",
			Range:        chunk.TextRange{Start: chunk.Location{Row: 1, Col: 0}, End: chunk.Location{Row: 1, Col: 13}},
			Category:     chunk.CategoryTweak,
			OriginalText: "Second lines.",
		},
		{
			ID:           "chunk_003",
			Range:        chunk.TextRange{Start: chunk.Location{Row: 2, Col: 0}, End: chunk.Location{Row: 2, Col: 7}},
			Category:     chunk.CategoryReplace,
			OriginalText: "Goodbye.",
		},
	}
}

func TestReviewer_ApproveAndDenyToCompletion(t *testing.T) {
	f := newFixture(t, testChunks(), map[string]string{
		"chunk_001": "Hi there.",
		"chunk_003": "Farewell.",
	})

	r := f.newReviewer(t)
	ctx := context.Background()

	require.Len(t, r.Chunks(), 3)
	assert.Equal(t, session.StatusReviewing, f.sess.Status)
	require.NotNil(t, r.Current())
	assert.Equal(t, "chunk_001", r.Current().ChunkID)

	require.NoError(t, r.Approve(ctx))
	assert.False(t, r.Done())
	assert.Equal(t, "chunk_002", r.Current().ChunkID)

	require.NoError(t, r.Deny(ctx))
	assert.False(t, r.Done())
	assert.Equal(t, "chunk_003", r.Current().ChunkID)

	require.NoError(t, r.Approve(ctx))
	assert.True(t, r.Done())
	assert.Nil(t, r.Current())
	assert.Zero(t, r.Remaining())

	working, err := os.ReadFile(filepath.Join(f.sessions.Dir(f.sess.ID), "working.md"))
	require.NoError(t, err)
	assert.Equal(t, "Hi there.\nSecond lines.\nFarewell.\n", string(working))

	// The canonical document is patched alongside the working copy.
	src, err := os.ReadFile(f.source)
	require.NoError(t, err)
	assert.Equal(t, "Hi there.\nSecond lines.\nFarewell.\n", string(src))

	reloaded, err := f.sessions.Load(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusComplete, reloaded.Status)
	assert.Equal(t, []string{"chunk_001", "chunk_003"}, reloaded.AppliedChunks)
	assert.Equal(t, []string{"chunk_002"}, reloaded.SkippedChunks)

	// Completion clears the owning project so a fresh marking pass can begin.
	assert.Empty(t, f.state.Chunks)
	loaded, err := f.sidecar.Load(f.source)
	require.NoError(t, err)
	assert.Empty(t, loaded.Chunks)

	var commits []string
	for _, c := range f.exec.Commands {
		if len(c.Args) >= 3 && c.Args[0] == "commit" {
			commits = append(commits, c.Args[2])
		}
	}
	assert.Equal(t, []string{"Applied chunk_001", "Applied chunk_003"}, commits)
}

func TestReviewer_ApproveWithoutResponse(t *testing.T) {
	f := newFixture(t, testChunks(), map[string]string{"chunk_003": "Farewell."})

	r := f.newReviewer(t)
	ctx := context.Background()

	err := r.Approve(ctx)
	require.ErrorIs(t, err, review.ErrNoResponse)
	assert.Equal(t, review.DecisionPending, r.Current().Decision)
	assert.Equal(t, "chunk_001", r.Current().ChunkID)

	// SetResponse fills the gap in memory and the approval goes through.
	require.NoError(t, r.SetResponse("Hi there."))
	require.NoError(t, r.Approve(ctx))
	assert.Equal(t, "chunk_002", r.Current().ChunkID)
}

func TestReviewer_ApplyFailureKeepsChunkPending(t *testing.T) {
	f := newFixture(t, testChunks(), map[string]string{"chunk_001": "Hi there."})

	// Corrupt the working copy so the anchor text cannot be found.
	working := filepath.Join(f.sessions.Dir(f.sess.ID), "working.md")
	require.NoError(t, os.WriteFile(working, []byte("entirely different\n"), 0o644))

	r := f.newReviewer(t)

	err := r.Approve(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, patch.ErrAnchorNotFound)
	assert.Equal(t, review.DecisionPending, r.Current().Decision)
	assert.False(t, r.Done())

	// Re-anchoring on the drifted text lets the approval proceed.
	require.NoError(t, r.SetOriginal("entirely different"))
	require.NoError(t, r.Approve(context.Background()))

	got, err2 := os.ReadFile(working)
	require.NoError(t, err2)
	assert.Contains(t, string(got), "Hi there.")
}

func TestReviewer_CommitFailureKeepsChunkPending(t *testing.T) {
	f := newFixture(t, testChunks(), map[string]string{"chunk_001": "Hi there."})
	f.exec.Errors = map[string]error{"git": os.ErrPermission}

	r := f.newReviewer(t)

	err := r.Approve(context.Background())
	require.Error(t, err)
	assert.Equal(t, review.DecisionPending, r.Current().Decision)

	// The working copy was already patched before the commit failed. A
	// retry against the same anchor will not find it again, which is why
	// the chunk must be re-reviewed rather than blindly re-approved.
	working, err2 := os.ReadFile(filepath.Join(f.sessions.Dir(f.sess.ID), "working.md"))
	require.NoError(t, err2)
	assert.Contains(t, string(working), "Hi there.")
}

func TestReviewer_SourcePatchFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, testChunks(), map[string]string{"chunk_001": "Hi there."})

	// Drift the source document away from the working copy.
	require.NoError(t, os.WriteFile(f.source, []byte("drifted content\n"), 0o644))

	r := f.newReviewer(t)

	require.NoError(t, r.Approve(context.Background()))
	assert.Equal(t, review.DecisionApproved, r.Chunks()[0].Decision)

	src, err := os.ReadFile(f.source)
	require.NoError(t, err)
	assert.Equal(t, "drifted content\n", string(src))
}

func TestReviewer_Focus(t *testing.T) {
	f := newFixture(t, testChunks(), map[string]string{"chunk_003": "Farewell."})

	r := f.newReviewer(t)
	ctx := context.Background()

	require.NoError(t, r.Focus("chunk_003"))
	require.NoError(t, r.Approve(ctx))

	// Focus wraps back around to the earliest pending chunk.
	assert.Equal(t, "chunk_001", r.Current().ChunkID)

	require.Error(t, r.Focus("chunk_003"))
	require.Error(t, r.Focus("chunk_099"))
}

func TestReviewer_DenyUnreadableArtifact(t *testing.T) {
	f := newFixture(t, testChunks(), nil)
	require.NoError(t, os.Remove(filepath.Join(f.sessions.Dir(f.sess.ID), f.sess.ChunkPath("chunk_001"))))

	r := f.newReviewer(t)
	ctx := context.Background()

	require.Error(t, r.Chunks()[0].Err)
	require.Error(t, r.Approve(ctx))

	require.NoError(t, r.Deny(ctx))
	assert.Equal(t, review.DecisionDenied, r.Chunks()[0].Decision)
}

func TestReviewer_ResumeSkipsDecidedChunks(t *testing.T) {
	f := newFixture(t, testChunks(), map[string]string{"chunk_003": "Farewell."})
	f.sess.MarkApplied("chunk_001")
	f.sess.MarkSkipped("chunk_002")

	r := f.newReviewer(t)

	require.Len(t, r.Chunks(), 1)
	assert.Equal(t, "chunk_003", r.Current().ChunkID)
}
