package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/redline/internal/core/session"
)

// sessionFilename is the metadata record inside each session directory.
const sessionFilename = "session.yaml"

// SessionStore persists session metadata under a sessions directory, one
// subdirectory per session.
type SessionStore struct {
	root string
	mu   sync.Mutex
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a session store rooted at the given directory.
func NewSessionStore(root string) *SessionStore {
	return &SessionStore{root: root}
}

// Dir returns the workspace directory for a session id.
func (s *SessionStore) Dir(id string) string {
	return filepath.Join(s.root, id)
}

// Save writes the full session record, replacing any previous one.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir(sess.ID), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}

	path := filepath.Join(s.Dir(sess.ID), sessionFilename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	return nil
}

// Load reads a session record by id. Returns ErrNotFound if the record does
// not exist and ErrInvalid if it cannot be parsed.
func (s *SessionStore) Load(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir(id), sessionFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var sess session.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session %s: %w: %s", id, ErrInvalid, err)
	}
	if sess.ID == "" {
		return nil, fmt.Errorf("session %s: %w: missing id", id, ErrInvalid)
	}

	return &sess, nil
}

// List returns all session ids that have a metadata record, sorted.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), sessionFilename)); err == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
