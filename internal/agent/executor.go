package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/colonyops/redline/internal/core/artifact"
	"github.com/colonyops/redline/internal/core/session"
)

// ProgressStatus describes where a chunk is in its agent run.
type ProgressStatus string

const (
	StatusStarting  ProgressStatus = "starting"
	StatusStreaming ProgressStatus = "streaming"
	StatusDone      ProgressStatus = "complete"
	StatusError     ProgressStatus = "error"
)

// Progress is one event in a session run. Streaming events carry the
// cumulative output so far; error events carry the failure message.
type Progress struct {
	ChunkIndex int
	Total      int
	ChunkID    string
	Status     ProgressStatus
	Text       string
}

// SessionExecutor runs the agent over every unanswered chunk artifact in a
// session, strictly in session order, appending each response to its
// artifact as it completes.
type SessionExecutor struct {
	log        zerolog.Logger
	runner     Runner
	sessionDir string

	cancelled atomic.Bool
}

// NewSessionExecutor builds an executor for one session workspace.
func NewSessionExecutor(log zerolog.Logger, runner Runner, sessionDir string) *SessionExecutor {
	return &SessionExecutor{log: log, runner: runner, sessionDir: sessionDir}
}

// Cancel stops the run after the in-flight chunk. Safe to call from any
// goroutine.
func (e *SessionExecutor) Cancel() {
	e.cancelled.Store(true)
}

// Execute processes the session's chunks and returns a channel of progress
// events. The channel is closed when the run finishes, is cancelled, or the
// context ends. Artifacts that already carry a response are skipped, so a
// cancelled or failed run can be resumed by executing again.
func (e *SessionExecutor) Execute(ctx context.Context, sess *session.Session) <-chan Progress {
	events := make(chan Progress, 64)

	go func() {
		defer close(events)
		e.run(ctx, sess, events)
	}()

	return events
}

func (e *SessionExecutor) run(ctx context.Context, sess *session.Session, events chan<- Progress) {
	total := len(sess.Chunks)

	for i, chunkID := range sess.Chunks {
		if e.cancelled.Load() || ctx.Err() != nil {
			e.log.Info().Int("remaining", total-i).Msg("session run cancelled")
			return
		}

		path := filepath.Join(e.sessionDir, sess.ChunkPath(chunkID))

		content, err := os.ReadFile(path)
		if err != nil {
			e.send(ctx, events, Progress{
				ChunkIndex: i, Total: total, ChunkID: chunkID,
				Status: StatusError, Text: err.Error(),
			})
			continue
		}

		if artifact.HasResponse(string(content)) {
			e.log.Debug().Str("chunk", chunkID).Msg("artifact already answered, skipping")
			continue
		}

		e.send(ctx, events, Progress{
			ChunkIndex: i, Total: total, ChunkID: chunkID, Status: StatusStarting,
		})

		var streamed strings.Builder
		text, err := e.runner.Run(ctx, DefaultInstruction, string(content), func(fragment string) {
			streamed.WriteString(fragment)
			e.send(ctx, events, Progress{
				ChunkIndex: i, Total: total, ChunkID: chunkID,
				Status: StatusStreaming, Text: streamed.String(),
			})
		})
		if err != nil {
			e.log.Error().Err(err).Str("chunk", chunkID).Msg("agent run failed")
			e.send(ctx, events, Progress{
				ChunkIndex: i, Total: total, ChunkID: chunkID,
				Status: StatusError, Text: err.Error(),
			})
			continue
		}

		if err := artifact.AppendResponse(path, text); err != nil {
			e.send(ctx, events, Progress{
				ChunkIndex: i, Total: total, ChunkID: chunkID,
				Status: StatusError, Text: fmt.Sprintf("record response: %s", err),
			})
			continue
		}

		e.send(ctx, events, Progress{
			ChunkIndex: i, Total: total, ChunkID: chunkID,
			Status: StatusDone, Text: text,
		})
	}
}

// send delivers an event unless the run was cancelled or the context ended.
// Delivery blocks when the buffer is full so events are never dropped.
func (e *SessionExecutor) send(ctx context.Context, events chan<- Progress, p Progress) {
	if e.cancelled.Load() {
		return
	}
	select {
	case events <- p:
	case <-ctx.Done():
	}
}
