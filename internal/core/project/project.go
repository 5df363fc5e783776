// Package project holds the mutable chunk collection for one document.
package project

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/colonyops/redline/internal/core/chunk"
)

// Version is the sidecar format version written by this build.
const Version = "1.0"

// unordered chunks sort after every explicit execution order.
const orderSentinel = 999

var chunkIDPattern = regexp.MustCompile(`^chunk_(\d+)$`)

// OverlapError reports a chunk insertion that collides with an existing chunk.
type OverlapError struct {
	Existing string // id of the conflicting chunk
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("chunk overlaps with %s", e.Existing)
}

// State is the complete marking state for one source document, persisted in
// the document's sidecar file.
type State struct {
	Version    string        `yaml:"version"`
	SourceFile string        `yaml:"source_file"`
	SourceHash string        `yaml:"source_hash"`
	CreatedAt  time.Time     `yaml:"created_at"`
	ModifiedAt time.Time     `yaml:"modified_at"`
	Chunks     []chunk.Chunk `yaml:"chunks"`
}

// New creates a fresh project state for a source document.
func New(sourceFile, sourceHash string) *State {
	now := time.Now()
	return &State{
		Version:    Version,
		SourceFile: sourceFile,
		SourceHash: sourceHash,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// NextChunkID allocates the next chunk identifier. IDs are monotone: the
// numeric suffix is always one past the highest existing suffix, so removed
// ids are never reused.
func (s *State) NextChunkID() string {
	next := 1
	for _, c := range s.Chunks {
		m := chunkIDPattern.FindStringSubmatch(c.ID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	return fmt.Sprintf("chunk_%03d", next)
}

// AddChunk appends a chunk after verifying it overlaps no existing chunk.
// On conflict it returns an *OverlapError and leaves the state unchanged.
func (s *State) AddChunk(c chunk.Chunk) error {
	for _, existing := range s.Chunks {
		if c.Range.Overlaps(existing.Range) {
			return &OverlapError{Existing: existing.ID}
		}
	}
	s.Chunks = append(s.Chunks, c)
	s.ModifiedAt = time.Now()
	return nil
}

// RemoveChunk deletes a chunk by id, returning false if it was not present.
func (s *State) RemoveChunk(id string) bool {
	for i, c := range s.Chunks {
		if c.ID == id {
			s.Chunks = append(s.Chunks[:i], s.Chunks[i+1:]...)
			s.ModifiedAt = time.Now()
			return true
		}
	}
	return false
}

// Chunk returns the chunk with the given id.
func (s *State) Chunk(id string) (chunk.Chunk, bool) {
	for _, c := range s.Chunks {
		if c.ID == id {
			return c, true
		}
	}
	return chunk.Chunk{}, false
}

// ChunksNeedingDirection returns all actionable (non-lock) chunks.
func (s *State) ChunksNeedingDirection() []chunk.Chunk {
	var out []chunk.Chunk
	for _, c := range s.Chunks {
		if c.NeedsDirection() {
			out = append(out, c)
		}
	}
	return out
}

// ChunksInExecutionOrder returns actionable chunks sorted by execution order.
// Chunks without an explicit order sort last, in insertion order.
func (s *State) ChunksInExecutionOrder() []chunk.Chunk {
	out := s.ChunksNeedingDirection()
	sort.SliceStable(out, func(i, j int) bool {
		return execOrder(out[i]) < execOrder(out[j])
	})
	return out
}

// LockChunks returns all lock chunks sorted by document position.
func (s *State) LockChunks() []chunk.Chunk {
	var out []chunk.Chunk
	for _, c := range s.Chunks {
		if c.Category == chunk.CategoryLock {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.Start.Before(out[j].Range.Start)
	})
	return out
}

// Clear empties the chunk list. Called once a review cycle completes and the
// document has been fully reconciled.
func (s *State) Clear() {
	s.Chunks = nil
	s.ModifiedAt = time.Now()
}

func execOrder(c chunk.Chunk) int {
	if c.ExecutionOrder == nil {
		return orderSentinel
	}
	return *c.ExecutionOrder
}
