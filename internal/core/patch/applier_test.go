package patch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/redline/internal/core/git"
	"github.com/colonyops/redline/pkg/executil"
)

func newTestApplier(t *testing.T, rec *executil.RecordingExecutor) *Applier {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "working.md"), []byte("Hello world.\nGoodbye."), 0o644))
	return NewApplier(zerolog.Nop(), git.NewExecutor("git", rec), dir, "working.md")
}

func TestApplier_ApplyWorking(t *testing.T) {
	a := newTestApplier(t, &executil.RecordingExecutor{})

	require.NoError(t, a.ApplyWorking("Hello world.", "Hi there."))

	data, err := os.ReadFile(a.WorkingPath())
	require.NoError(t, err)
	assert.Equal(t, "Hi there.\nGoodbye.", string(data))
}

func TestApplier_CommitChunk(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	a := newTestApplier(t, rec)

	require.NoError(t, a.CommitChunk(context.Background(), "chunk_001"))

	require.Len(t, rec.Commands, 2)
	assert.Equal(t, []string{"add", "working.md"}, rec.Commands[0].Args)
	assert.Equal(t, []string{"commit", "-m", "Applied chunk_001"}, rec.Commands[1].Args)
}

func TestApplier_CommitChunk_Error(t *testing.T) {
	boom := errors.New("commit failed")
	rec := &executil.RecordingExecutor{Errors: map[string]error{"git": boom}}
	a := newTestApplier(t, rec)

	assert.ErrorIs(t, a.CommitChunk(context.Background(), "chunk_001"), boom)
}

func TestApplier_Rollback(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"git": []byte("2\n")}}
	a := newTestApplier(t, rec)

	require.NoError(t, a.Rollback(context.Background()))

	// rev-list, checkout, add, commit
	require.Len(t, rec.Commands, 4)
	assert.Equal(t, []string{"checkout", "HEAD~1", "--", "working.md"}, rec.Commands[1].Args)
	assert.Equal(t, []string{"commit", "-m", "Rollback last chunk"}, rec.Commands[3].Args)
}

func TestApplier_LastDiff(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"git": []byte("2\n")}}
	a := newTestApplier(t, rec)

	_, err := a.LastDiff(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.Commands, 2)
	assert.Equal(t, []string{"diff", "HEAD~1", "HEAD", "--", "working.md"}, rec.Commands[1].Args)
}

func TestApplier_LastDiff_NoAppliedChunks(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"git": []byte("1\n")}}
	a := newTestApplier(t, rec)

	diff, err := a.LastDiff(context.Background())
	require.NoError(t, err)
	assert.Empty(t, diff)
	assert.Len(t, rec.Commands, 1, "only rev-list should have run")
}

func TestApplier_Rollback_NothingToUndo(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"git": []byte("1\n")}}
	a := newTestApplier(t, rec)

	err := a.Rollback(context.Background())
	require.Error(t, err)
	assert.Len(t, rec.Commands, 1, "only rev-list should have run")
}
