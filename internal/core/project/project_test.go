package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/redline/internal/core/chunk"
)

func mkChunk(id string, sr, sc, er, ec int, cat chunk.Category) chunk.Chunk {
	return chunk.Chunk{
		ID: id,
		Range: chunk.TextRange{
			Start: chunk.Location{Row: sr, Col: sc},
			End:   chunk.Location{Row: er, Col: ec},
		},
		Category:     cat,
		OriginalText: id + " text",
	}
}

func TestState_NextChunkID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty state", nil, "chunk_001"},
		{"sequential", []string{"chunk_001", "chunk_002"}, "chunk_003"},
		{"gaps never reused", []string{"chunk_001", "chunk_003"}, "chunk_004"},
		{"foreign ids ignored", []string{"note_007", "chunk_002"}, "chunk_003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("doc.md", "abc")
			for i, id := range tt.ids {
				s.Chunks = append(s.Chunks, mkChunk(id, i*10, 0, i*10, 5, chunk.CategoryReplace))
			}
			assert.Equal(t, tt.want, s.NextChunkID())
		})
	}
}

func TestState_AddChunk_Overlap(t *testing.T) {
	s := New("doc.md", "abc")
	require.NoError(t, s.AddChunk(mkChunk("chunk_001", 1, 5, 1, 10, chunk.CategoryReplace)))

	err := s.AddChunk(mkChunk("chunk_002", 1, 8, 1, 12, chunk.CategoryTweak))
	require.Error(t, err)

	var overlapErr *OverlapError
	require.ErrorAs(t, err, &overlapErr)
	assert.Equal(t, "chunk_001", overlapErr.Existing)
	assert.Len(t, s.Chunks, 1, "failed insert must leave the chunk list unchanged")
}

func TestState_AddChunk_BumpsModified(t *testing.T) {
	s := New("doc.md", "abc")
	before := s.ModifiedAt

	require.NoError(t, s.AddChunk(mkChunk("chunk_001", 0, 0, 0, 5, chunk.CategoryReplace)))
	assert.False(t, s.ModifiedAt.Before(before))
}

func TestState_RemoveChunk(t *testing.T) {
	s := New("doc.md", "abc")
	require.NoError(t, s.AddChunk(mkChunk("chunk_001", 0, 0, 0, 5, chunk.CategoryReplace)))

	assert.True(t, s.RemoveChunk("chunk_001"))
	assert.Empty(t, s.Chunks)
	assert.False(t, s.RemoveChunk("chunk_001"), "second remove is a no-op")
}

func TestState_ChunksNeedingDirection(t *testing.T) {
	s := New("doc.md", "abc")
	require.NoError(t, s.AddChunk(mkChunk("chunk_001", 0, 0, 0, 5, chunk.CategoryReplace)))
	require.NoError(t, s.AddChunk(mkChunk("chunk_002", 2, 0, 2, 5, chunk.CategoryLock)))
	require.NoError(t, s.AddChunk(mkChunk("chunk_003", 4, 0, 4, 5, chunk.CategoryTweak)))

	got := s.ChunksNeedingDirection()
	require.Len(t, got, 2)
	assert.Equal(t, "chunk_001", got[0].ID)
	assert.Equal(t, "chunk_003", got[1].ID)
}

func TestState_ChunksInExecutionOrder(t *testing.T) {
	order := func(n int) *int { return &n }

	s := New("doc.md", "abc")
	c1 := mkChunk("chunk_001", 0, 0, 0, 5, chunk.CategoryReplace)
	c2 := mkChunk("chunk_002", 2, 0, 2, 5, chunk.CategoryReplace)
	c2.ExecutionOrder = order(1)
	c3 := mkChunk("chunk_003", 4, 0, 4, 5, chunk.CategoryTweak)
	c3.ExecutionOrder = order(2)

	require.NoError(t, s.AddChunk(c1))
	require.NoError(t, s.AddChunk(c2))
	require.NoError(t, s.AddChunk(c3))

	got := s.ChunksInExecutionOrder()
	require.Len(t, got, 3)
	assert.Equal(t, "chunk_002", got[0].ID)
	assert.Equal(t, "chunk_003", got[1].ID)
	assert.Equal(t, "chunk_001", got[2].ID, "unordered chunks sort last")
}

func TestState_LockChunks_DocumentOrder(t *testing.T) {
	s := New("doc.md", "abc")
	l2 := mkChunk("chunk_002", 8, 0, 8, 5, chunk.CategoryLock)
	l2.LockType = chunk.LockReference
	l1 := mkChunk("chunk_001", 2, 0, 2, 5, chunk.CategoryLock)
	l1.LockType = chunk.LockExample

	require.NoError(t, s.AddChunk(l2))
	require.NoError(t, s.AddChunk(l1))

	got := s.LockChunks()
	require.Len(t, got, 2)
	assert.Equal(t, "chunk_001", got[0].ID)
	assert.Equal(t, "chunk_002", got[1].ID)
}

func TestState_Clear(t *testing.T) {
	s := New("doc.md", "abc")
	require.NoError(t, s.AddChunk(mkChunk("chunk_001", 0, 0, 0, 5, chunk.CategoryReplace)))

	s.Clear()
	assert.Empty(t, s.Chunks)
}
