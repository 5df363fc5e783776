package git

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/redline/pkg/executil"
)

func TestExecutor_Init(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	e := NewExecutor("git", rec)

	require.NoError(t, e.Init(context.Background(), "/tmp/session"))

	require.Len(t, rec.Commands, 1)
	assert.Equal(t, "/tmp/session", rec.Commands[0].Dir)
	assert.Equal(t, []string{"init"}, rec.Commands[0].Args)
}

func TestExecutor_SetIdentity(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	e := NewExecutor("git", rec)

	require.NoError(t, e.SetIdentity(context.Background(), "/tmp/session", "redline", "redline@local"))

	require.Len(t, rec.Commands, 2)
	assert.Equal(t, []string{"config", "user.name", "redline"}, rec.Commands[0].Args)
	assert.Equal(t, []string{"config", "user.email", "redline@local"}, rec.Commands[1].Args)
}

func TestExecutor_Commit(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	e := NewExecutor("git", rec)

	require.NoError(t, e.Add(context.Background(), "/tmp/session", "working.md"))
	require.NoError(t, e.Commit(context.Background(), "/tmp/session", "Applied chunk_001"))

	require.Len(t, rec.Commands, 2)
	assert.Equal(t, []string{"add", "working.md"}, rec.Commands[0].Args)
	assert.Equal(t, []string{"commit", "-m", "Applied chunk_001"}, rec.Commands[1].Args)
}

func TestExecutor_Commit_Error(t *testing.T) {
	boom := errors.New("boom")
	rec := &executil.RecordingExecutor{Errors: map[string]error{"git": boom}}
	e := NewExecutor("git", rec)

	err := e.Commit(context.Background(), "/tmp/session", "msg")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestExecutor_DiffRange(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"git": []byte("diff body")}}
	e := NewExecutor("git", rec)

	out, err := e.DiffRange(context.Background(), "/tmp/session", "HEAD~1", "HEAD", "working.md")
	require.NoError(t, err)
	assert.Equal(t, "diff body", out)

	require.Len(t, rec.Commands, 1)
	assert.Equal(t, []string{"diff", "HEAD~1", "HEAD", "--", "working.md"}, rec.Commands[0].Args)
}

func TestExecutor_CheckoutPathAt(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	e := NewExecutor("git", rec)

	require.NoError(t, e.CheckoutPathAt(context.Background(), "/tmp/session", "HEAD~1", "working.md"))

	require.Len(t, rec.Commands, 1)
	assert.Equal(t, []string{"checkout", "HEAD~1", "--", "working.md"}, rec.Commands[0].Args)
}

func TestExecutor_RevCount(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"git": []byte("3\n")}}
	e := NewExecutor("git", rec)

	n, err := e.RevCount(context.Background(), "/tmp/session")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestExecutor_HasChanges(t *testing.T) {
	t.Run("dirty", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"git": []byte(" M working.md\n")}}
		e := NewExecutor("git", rec)

		dirty, err := e.HasChanges(context.Background(), "/tmp/session", "working.md")
		require.NoError(t, err)
		assert.True(t, dirty)
	})

	t.Run("clean", func(t *testing.T) {
		rec := &executil.RecordingExecutor{}
		e := NewExecutor("git", rec)

		dirty, err := e.HasChanges(context.Background(), "/tmp/session", "working.md")
		require.NoError(t, err)
		assert.False(t, dirty)
	})
}
