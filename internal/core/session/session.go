// Package session defines the editing session: one generation pass over a
// set of actionable chunks, backed by its own version-controlled workspace.
package session

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Status represents the lifecycle state of a session.
type Status string

// Session lifecycle states.
const (
	// StatusGenerating: workspace and task artifacts are being materialized.
	StatusGenerating Status = "generating"
	// StatusEditing: artifacts exist and await agent responses.
	StatusEditing Status = "editing"
	// StatusReviewing: a review pass over the responses is underway.
	StatusReviewing Status = "reviewing"
	// StatusComplete: every chunk has a terminal decision.
	StatusComplete Status = "complete"
)

// Session is one generation pass over a document's actionable chunks.
// Lock chunks are bundled into task artifacts as context but never listed
// here; only actionable chunks receive decisions.
type Session struct {
	ID         string    `yaml:"id"`
	SourceFile string    `yaml:"source_file"`
	CreatedAt  time.Time `yaml:"created_at"`

	// Chunks holds actionable chunk ids in execution order.
	Chunks []string `yaml:"chunks"`

	Status Status `yaml:"status"`

	// Workspace paths, relative to the session directory.
	OriginalFile string `yaml:"original_file"`
	WorkingFile  string `yaml:"working_file"`
	ChunksDir    string `yaml:"chunks_dir"`

	// Terminal decisions. The two sets are disjoint.
	AppliedChunks []string `yaml:"applied_chunks"`
	SkippedChunks []string `yaml:"skipped_chunks"`
}

// NewID derives a session id from the document name and creation time with
// second resolution. Two sessions created for the same document within the
// same second collide; that is accepted as user error and not remediated.
func NewID(sourceFile string, now time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	return stem + "_" + now.Format("20060102_150405")
}

// ChunkFile returns the artifact filename for a chunk, relative to ChunksDir.
func (s *Session) ChunkFile(chunkID string) string {
	return chunkID + ".md"
}

// ChunkPath returns the artifact path for a chunk relative to the session
// directory.
func (s *Session) ChunkPath(chunkID string) string {
	return filepath.Join(s.ChunksDir, s.ChunkFile(chunkID))
}

// PendingChunks returns the ids that have no terminal decision yet, in
// session order.
func (s *Session) PendingChunks() []string {
	var out []string
	for _, id := range s.Chunks {
		if slices.Contains(s.AppliedChunks, id) || slices.Contains(s.SkippedChunks, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// MarkApplied records an approve decision, keeping the decision sets disjoint.
func (s *Session) MarkApplied(chunkID string) {
	s.SkippedChunks = remove(s.SkippedChunks, chunkID)
	if !slices.Contains(s.AppliedChunks, chunkID) {
		s.AppliedChunks = append(s.AppliedChunks, chunkID)
	}
}

// MarkSkipped records a deny decision, keeping the decision sets disjoint.
func (s *Session) MarkSkipped(chunkID string) {
	s.AppliedChunks = remove(s.AppliedChunks, chunkID)
	if !slices.Contains(s.SkippedChunks, chunkID) {
		s.SkippedChunks = append(s.SkippedChunks, chunkID)
	}
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Store persists session metadata. Records are written whole on every
// mutation; there are no partial updates.
type Store interface {
	// Save writes the full session record.
	Save(ctx context.Context, s *Session) error
	// Load reads a session by id.
	Load(ctx context.Context, id string) (*Session, error)
	// List returns all known session ids, sorted.
	List(ctx context.Context) ([]string, error)
	// Dir returns the session's workspace directory.
	Dir(id string) string
}
