// Package review sequences pending chunks through approve/deny decisions,
// applying approved responses through the patch engine and persisting
// progress after every decision.
package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/colonyops/redline/internal/core/artifact"
	"github.com/colonyops/redline/internal/core/patch"
	"github.com/colonyops/redline/internal/core/project"
	"github.com/colonyops/redline/internal/core/session"
)

// Decision is the review state of a single chunk.
type Decision string

// Chunk decisions. Approved and denied are terminal.
const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionDenied   Decision = "denied"
)

// ErrNoResponse indicates an approval was attempted on a chunk whose
// artifact carries no agent response.
var ErrNoResponse = errors.New("chunk has no agent response")

// Chunk is the transient review-scoped view of one pending chunk. It is
// rebuilt from the session and the on-disk artifacts at the start of each
// review pass.
type Chunk struct {
	ChunkID  string
	Data     artifact.ChunkData
	Decision Decision

	// Err is set when the artifact was missing or unreadable. Such chunks
	// cannot be approved but may still be denied.
	Err error
}

// SessionStore persists session progress during review.
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
}

// ProjectStore persists the owning project state when the review completes.
type ProjectStore interface {
	Save(sourceFile string, state *project.State) error
}

// Reviewer drives one review pass over a session's pending chunks. Decisions
// are inherently serialized: only the chunk holding the current focus can be
// approved, so the working copy never sees two concurrent applications.
type Reviewer struct {
	log      zerolog.Logger
	sess     *session.Session
	state    *project.State
	applier  *patch.Applier
	sessions SessionStore
	sidecar  ProjectStore

	chunks  []*Chunk
	current int
}

// New builds a reviewer over the session's pending chunks, loading each
// chunk's artifact. The session transitions to reviewing and is persisted.
func New(
	ctx context.Context,
	log zerolog.Logger,
	sess *session.Session,
	state *project.State,
	sessionDir string,
	applier *patch.Applier,
	sessions SessionStore,
	sidecar ProjectStore,
) (*Reviewer, error) {
	r := &Reviewer{
		log:      log,
		sess:     sess,
		state:    state,
		applier:  applier,
		sessions: sessions,
		sidecar:  sidecar,
	}

	for _, id := range sess.PendingChunks() {
		rc := &Chunk{ChunkID: id, Decision: DecisionPending}
		data, err := artifact.ParseFile(filepath.Join(sessionDir, sess.ChunkPath(id)))
		if err != nil {
			rc.Err = err
		} else {
			rc.Data = data
		}
		r.chunks = append(r.chunks, rc)
	}

	if len(r.chunks) > 0 && sess.Status != session.StatusReviewing {
		sess.Status = session.StatusReviewing
		if err := sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("persist review start: %w", err)
		}
	}

	return r, nil
}

// Chunks returns the review chunks in session order.
func (r *Reviewer) Chunks() []*Chunk {
	return r.chunks
}

// Current returns the chunk holding the decision focus, or nil when the
// review has completed.
func (r *Reviewer) Current() *Chunk {
	if r.Done() {
		return nil
	}
	return r.chunks[r.current]
}

// Done reports whether every chunk has a terminal decision.
func (r *Reviewer) Done() bool {
	for _, c := range r.chunks {
		if c.Decision == DecisionPending {
			return false
		}
	}
	return true
}

// Remaining returns the number of chunks still pending.
func (r *Reviewer) Remaining() int {
	n := 0
	for _, c := range r.chunks {
		if c.Decision == DecisionPending {
			n++
		}
	}
	return n
}

// Focus moves the decision focus to the named chunk. It must be pending.
func (r *Reviewer) Focus(chunkID string) error {
	for i, c := range r.chunks {
		if c.ChunkID == chunkID {
			if c.Decision != DecisionPending {
				return fmt.Errorf("chunk %s already %s", chunkID, c.Decision)
			}
			r.current = i
			return nil
		}
	}
	return fmt.Errorf("chunk %s is not part of this review", chunkID)
}

// SetResponse replaces the focused chunk's response in memory only. The
// on-disk artifact is untouched until a decision is made.
func (r *Reviewer) SetResponse(text string) error {
	c := r.Current()
	if c == nil {
		return fmt.Errorf("review already complete")
	}
	if c.Err != nil {
		return fmt.Errorf("chunk %s artifact unreadable: %w", c.ChunkID, c.Err)
	}
	c.Data.Response = text
	c.Data.HasResponse = len(text) > 0
	return nil
}

// SetOriginal replaces the focused chunk's anchor text in memory only. Used
// to re-anchor a chunk when the working copy drifted from the artifact.
func (r *Reviewer) SetOriginal(text string) error {
	c := r.Current()
	if c == nil {
		return fmt.Errorf("review already complete")
	}
	if c.Err != nil {
		return fmt.Errorf("chunk %s artifact unreadable: %w", c.ChunkID, c.Err)
	}
	c.Data.OriginalText = text
	return nil
}

// Approve applies the focused chunk's response to the working copy and the
// canonical source document, commits the working copy, records the decision,
// and advances. On any failure the chunk stays pending and nothing is
// recorded.
//
// The working copy and the source are patched by two independent calls; if
// the source patch fails after the working copy succeeded the two diverge.
// That asymmetry is deliberate and surfaced in the log rather than
// reconciled.
func (r *Reviewer) Approve(ctx context.Context) error {
	c := r.Current()
	if c == nil {
		return fmt.Errorf("review already complete")
	}
	if c.Err != nil {
		return fmt.Errorf("cannot approve %s: %w", c.ChunkID, c.Err)
	}
	if !c.Data.HasResponse {
		return fmt.Errorf("cannot approve %s: %w", c.ChunkID, ErrNoResponse)
	}

	if err := r.applier.ApplyWorking(c.Data.OriginalText, c.Data.Response); err != nil {
		return fmt.Errorf("apply %s to working copy: %w", c.ChunkID, err)
	}

	if err := patch.ApplyToFile(r.sess.SourceFile, c.Data.OriginalText, c.Data.Response); err != nil {
		r.log.Warn().
			Err(err).
			Str("chunk", c.ChunkID).
			Msg("source document not patched; working copy and source have diverged")
	}

	if err := r.applier.CommitChunk(ctx, c.ChunkID); err != nil {
		return fmt.Errorf("commit %s: %w", c.ChunkID, err)
	}

	c.Decision = DecisionApproved
	r.sess.MarkApplied(c.ChunkID)
	if err := r.sessions.Save(ctx, r.sess); err != nil {
		return fmt.Errorf("persist decision for %s: %w", c.ChunkID, err)
	}

	r.log.Info().Str("chunk", c.ChunkID).Msg("chunk approved and applied")
	return r.advance(ctx)
}

// Deny records a deny decision for the focused chunk and advances. Denial
// always succeeds for a pending chunk, including ones with unreadable
// artifacts.
func (r *Reviewer) Deny(ctx context.Context) error {
	c := r.Current()
	if c == nil {
		return fmt.Errorf("review already complete")
	}

	c.Decision = DecisionDenied
	r.sess.MarkSkipped(c.ChunkID)
	if err := r.sessions.Save(ctx, r.sess); err != nil {
		return fmt.Errorf("persist decision for %s: %w", c.ChunkID, err)
	}

	r.log.Info().Str("chunk", c.ChunkID).Msg("chunk denied")
	return r.advance(ctx)
}

// advance moves focus to the next pending chunk, scanning forward and
// wrapping to the start. When none remain the review completes: the session
// is marked complete and the owning project's chunk list is cleared, since
// the document has been fully reconciled.
func (r *Reviewer) advance(ctx context.Context) error {
	n := len(r.chunks)
	for i := 1; i <= n; i++ {
		idx := (r.current + i) % n
		if r.chunks[idx].Decision == DecisionPending {
			r.current = idx
			return nil
		}
	}

	r.sess.Status = session.StatusComplete
	if err := r.sessions.Save(ctx, r.sess); err != nil {
		return fmt.Errorf("persist session completion: %w", err)
	}

	r.state.Clear()
	if err := r.sidecar.Save(r.sess.SourceFile, r.state); err != nil {
		return fmt.Errorf("clear project state: %w", err)
	}

	r.log.Info().
		Str("session", r.sess.ID).
		Int("applied", len(r.sess.AppliedChunks)).
		Int("skipped", len(r.sess.SkippedChunks)).
		Msg("review complete")

	return nil
}
