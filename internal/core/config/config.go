// Package config handles configuration loading and validation for redline.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// AgentConfig defines the external agent subprocess.
type AgentConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Config holds the application configuration.
type Config struct {
	// Folder is the document root scanned for editable files.
	Folder string `yaml:"folder"`
	// Patterns select documents under Folder. Doublestar globs.
	Patterns []string    `yaml:"patterns"`
	Agent    AgentConfig `yaml:"agent"`
	GitPath  string      `yaml:"git_path"`
	DataDir  string      `yaml:"-"` // set by caller, not from config file
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Folder:   ".",
		Patterns: []string{"*.md"},
		Agent: AgentConfig{
			Command: "claude",
			Args:    []string{"--print"},
		},
		GitPath: "git",
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Folder == "" {
		c.Folder = defaults.Folder
	}
	if len(c.Patterns) == 0 {
		c.Patterns = defaults.Patterns
	}
	if c.Agent.Command == "" {
		c.Agent = defaults.Agent
	}
	if c.GitPath == "" {
		c.GitPath = defaults.GitPath
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.GitPath == "" {
		return fmt.Errorf("git_path cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Agent.Command == "" {
		return fmt.Errorf("agent.command cannot be empty")
	}

	for i, pattern := range c.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("patterns[%d]: invalid glob %q", i, pattern)
		}
	}

	return nil
}

// Documents returns documents under Folder matching the configured
// patterns, relative to Folder, sorted and deduplicated.
func (c *Config) Documents() ([]string, error) {
	fsys := os.DirFS(c.Folder)

	seen := map[string]struct{}{}
	for _, pattern := range c.Patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	docs := make([]string, 0, len(seen))
	for m := range seen {
		docs = append(docs, m)
	}
	sort.Strings(docs)

	return docs, nil
}
