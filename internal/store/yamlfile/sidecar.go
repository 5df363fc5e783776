package yamlfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/redline/internal/core/project"
)

// sidecarSuffix is appended to the source filename to derive the sidecar path.
const sidecarSuffix = ".redline.yaml"

// SidecarPath returns the sidecar file path for a source document.
func SidecarPath(sourceFile string) string {
	return sourceFile + sidecarSuffix
}

// SidecarStore persists project state in a YAML sidecar next to the source
// document.
type SidecarStore struct{}

// NewSidecarStore creates a sidecar store.
func NewSidecarStore() *SidecarStore {
	return &SidecarStore{}
}

// Load reads the project state for a source document. Returns ErrNotFound if
// no sidecar exists and ErrInvalid if it cannot be parsed.
func (s *SidecarStore) Load(sourceFile string) (*project.State, error) {
	path := SidecarPath(sourceFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("sidecar %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read sidecar %s: %w", path, err)
	}

	var state project.State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("sidecar %s: %w: %s", path, ErrInvalid, err)
	}
	if state.SourceFile == "" {
		return nil, fmt.Errorf("sidecar %s: %w: missing source_file", path, ErrInvalid)
	}

	return &state, nil
}

// Save writes the full project state, bumping its modification time. The
// write is atomic: a temp file is renamed over the previous record.
func (s *SidecarStore) Save(sourceFile string, state *project.State) error {
	state.ModifiedAt = time.Now()

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}

	path := SidecarPath(sourceFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write sidecar %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write sidecar %s: %w", path, err)
	}
	return nil
}

// Delete removes the sidecar for a source document, if present.
func (s *SidecarStore) Delete(sourceFile string) error {
	err := os.Remove(SidecarPath(sourceFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove sidecar: %w", err)
	}
	return nil
}

// NewProject creates fresh project state for a source document, hashing its
// current content.
func (s *SidecarStore) NewProject(sourceFile string) (*project.State, error) {
	hash, err := HashFile(sourceFile)
	if err != nil {
		return nil, err
	}
	return project.New(sourceFile, hash), nil
}

// SourceChanged reports whether the document content no longer matches the
// hash captured when the sidecar was written. A mismatch means the chunk
// marks may be stale; it is surfaced, never auto-resolved.
func (s *SidecarStore) SourceChanged(sourceFile string, state *project.State) (bool, error) {
	hash, err := HashFile(sourceFile)
	if err != nil {
		return false, err
	}
	return hash != state.SourceHash, nil
}

// HashFile returns a truncated SHA-256 content hash of the file.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16], nil
}
