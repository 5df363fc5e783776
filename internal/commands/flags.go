// Package commands implements the redline CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/colonyops/redline/internal/core/session"

	"github.com/colonyops/redline/internal/core/config"
	"github.com/colonyops/redline/internal/core/git"
	"github.com/colonyops/redline/internal/core/project"
	"github.com/colonyops/redline/internal/store/yamlfile"
	"github.com/colonyops/redline/pkg/executil"
)

// Default locations, relative to the working directory. redline keeps its
// state project-local rather than in XDG directories so documents and their
// edit state travel together.
const (
	DefaultDataDir     = ".redline"
	DefaultConfigPath  = ".redline/config.yaml"
	DefaultSessionsDir = "sessions"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// SessionsRoot returns the directory holding session workspaces.
func (f *Flags) SessionsRoot() string {
	return filepath.Join(f.Config.DataDir, DefaultSessionsDir)
}

// SidecarStore returns the project state store.
func (f *Flags) SidecarStore() *yamlfile.SidecarStore {
	return yamlfile.NewSidecarStore()
}

// SessionStore returns the session metadata store.
func (f *Flags) SessionStore() *yamlfile.SessionStore {
	return yamlfile.NewSessionStore(f.SessionsRoot())
}

// GitRepo returns a git runner using the configured git binary.
func (f *Flags) GitRepo() git.Repo {
	return git.NewExecutor(f.Config.GitPath, &executil.RealExecutor{})
}

// loadProject loads the sidecar for a document, with a friendlier message
// for the common case of a document that was never marked.
func (f *Flags) loadProject(sourceFile string) (*project.State, error) {
	state, err := f.SidecarStore().Load(sourceFile)
	if err != nil {
		if errors.Is(err, yamlfile.ErrNotFound) {
			return nil, fmt.Errorf("no chunks marked in %s (run 'redline mark' first)", sourceFile)
		}
		return nil, err
	}
	return state, nil
}

// sessionRecord pairs a loaded session with its workspace location.
type sessionRecord struct {
	Session *session.Session
	Store   *yamlfile.SessionStore
	Dir     string
}

// loadSession loads a session record by id.
func (f *Flags) loadSession(ctx context.Context, id string) (*sessionRecord, error) {
	store := f.SessionStore()
	sess, err := store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return &sessionRecord{Session: sess, Store: store, Dir: store.Dir(id)}, nil
}
