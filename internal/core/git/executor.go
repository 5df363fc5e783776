package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/colonyops/redline/pkg/executil"
)

// Executor implements Repo using the git command-line tool.
type Executor struct {
	gitPath string
	exec    executil.Executor
}

// NewExecutor creates a new git executor with the specified git binary path.
func NewExecutor(gitPath string, exec executil.Executor) *Executor {
	return &Executor{gitPath: gitPath, exec: exec}
}

var _ Repo = (*Executor)(nil)

func (e *Executor) Init(ctx context.Context, dir string) error {
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "init"); err != nil {
		return fmt.Errorf("init repository in %s: %w", dir, err)
	}
	return nil
}

func (e *Executor) SetIdentity(ctx context.Context, dir, name, email string) error {
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "config", "user.name", name); err != nil {
		return fmt.Errorf("config user.name: %w", err)
	}
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "config", "user.email", email); err != nil {
		return fmt.Errorf("config user.email: %w", err)
	}
	return nil
}

func (e *Executor) Add(ctx context.Context, dir string, paths ...string) error {
	args := append([]string{"add"}, paths...)
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, args...); err != nil {
		return fmt.Errorf("add %s: %w", strings.Join(paths, " "), err)
	}
	return nil
}

func (e *Executor) Commit(ctx context.Context, dir, message string) error {
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "commit", "-m", message); err != nil {
		return fmt.Errorf("commit %q: %w", message, err)
	}
	return nil
}

func (e *Executor) DiffRange(ctx context.Context, dir, from, to, path string) (string, error) {
	args := []string{"diff", from}
	if to != "" {
		args = append(args, to)
	}
	args = append(args, "--", path)
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, args...)
	if err != nil {
		return "", fmt.Errorf("diff %s..%s: %w", from, to, err)
	}
	return string(out), nil
}

func (e *Executor) CheckoutPathAt(ctx context.Context, dir, rev, path string) error {
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "checkout", rev, "--", path); err != nil {
		return fmt.Errorf("checkout %s at %s: %w", path, rev, err)
	}
	return nil
}

func (e *Executor) RevCount(ctx context.Context, dir string) (int, error) {
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, fmt.Errorf("rev-list: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("parse rev count %q: %w", strings.TrimSpace(string(out)), err)
	}
	return n, nil
}

func (e *Executor) HasChanges(ctx context.Context, dir, path string) (bool, error) {
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "status", "--porcelain", path)
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}
