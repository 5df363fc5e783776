// Package agent invokes an external AI agent over chunk artifacts and
// streams its output back as progress events.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/redline/pkg/executil"
)

// DefaultInstruction frames the artifact for the agent. The artifact itself
// carries the category, direction, and target text.
const DefaultInstruction = "You are an editing assistant. Read the task below and respond with ONLY the edited text, no explanations."

// Runner executes the agent once over a complete task input and returns its
// final output. onOutput receives raw output fragments as they arrive and
// may be nil.
type Runner interface {
	Run(ctx context.Context, instruction, input string, onOutput func(string)) (string, error)
}

// CLIRunner runs the agent as a subprocess, writing the task to stdin and
// reading the edited text from stdout.
type CLIRunner struct {
	log     zerolog.Logger
	exec    executil.Executor
	command string
	args    []string
}

// NewCLIRunner builds a runner for the configured agent command.
func NewCLIRunner(log zerolog.Logger, exec executil.Executor, command string, args []string) *CLIRunner {
	return &CLIRunner{log: log, exec: exec, command: command, args: args}
}

// Run invokes the agent with the instruction as its final argument and the
// task input on stdin, returning trimmed stdout. An exit failure or empty
// output is an error; stderr is folded into the error message.
func (r *CLIRunner) Run(ctx context.Context, instruction, input string, onOutput func(string)) (string, error) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	out := &fragmentWriter{buf: &stdout, fn: onOutput}

	args := make([]string, 0, len(r.args)+1)
	args = append(args, r.args...)
	if instruction != "" {
		args = append(args, instruction)
	}

	r.log.Debug().Str("command", r.command).Strs("args", args).Msg("invoking agent")

	err := r.exec.RunInput(ctx, strings.NewReader(input), out, &stderr, r.command, args...)
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("agent %s: %w: %s", r.command, err, msg)
		}
		return "", fmt.Errorf("agent %s: %w", r.command, err)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("agent %s produced no output", r.command)
	}

	return text, nil
}

// fragmentWriter tees writes into a buffer while forwarding each fragment
// to a callback.
type fragmentWriter struct {
	buf *bytes.Buffer
	fn  func(string)
}

func (w *fragmentWriter) Write(p []byte) (int, error) {
	if w.fn != nil {
		w.fn(string(p))
	}
	return w.buf.Write(p)
}
