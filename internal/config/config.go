// Package config loads the treedex YAML configuration. Every field has a
// working default so an empty (or absent) file indexes the current
// directory into ./treedex.db.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/treedex/internal/checkpoint"
	"github.com/agentic-research/treedex/internal/traverse"
)

// Config drives one indexing run.
type Config struct {
	// Root is the directory to index.
	Root string
	// RootName is the display name written to Level 1 for the root.
	RootName string
	// Database is the SQLite file shared by the sheet and the checkpoints.
	Database string
	// LinkBase, if set, prefixes every file link in the Link column.
	LinkBase string
	// LockFile guards against concurrent ticks across processes.
	LockFile string
	// Budget bounds one tick's wall-clock time.
	Budget time.Duration
	// ResumeDelay is the pause before a scheduled continuation.
	ResumeDelay time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Root:        ".",
		RootName:    "root",
		Database:    "treedex.db",
		LockFile:    "treedex.lock",
		Budget:      traverse.DefaultBudget,
		ResumeDelay: checkpoint.DefaultResumeDelay,
	}
}

// yamlConfig is the on-disk shape; durations are strings like "5m30s".
type yamlConfig struct {
	Root        string `yaml:"root"`
	RootName    string `yaml:"root_name"`
	Database    string `yaml:"database"`
	LinkBase    string `yaml:"link_base"`
	LockFile    string `yaml:"lock_file"`
	Budget      string `yaml:"budget"`
	ResumeDelay string `yaml:"resume_delay"`
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error when path is empty; a named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg = Config{
		Root:     raw.Root,
		RootName: raw.RootName,
		Database: raw.Database,
		LinkBase: raw.LinkBase,
		LockFile: raw.LockFile,
	}
	if raw.Budget != "" {
		if cfg.Budget, err = time.ParseDuration(raw.Budget); err != nil {
			return cfg, fmt.Errorf("parse budget: %w", err)
		}
	}
	if raw.ResumeDelay != "" {
		if cfg.ResumeDelay, err = time.ParseDuration(raw.ResumeDelay); err != nil {
			return cfg, fmt.Errorf("parse resume_delay: %w", err)
		}
	}
	return cfg.withDefaults(), nil
}

// withDefaults fills zero-valued fields back in, so partial files only
// override what they name.
func (c Config) withDefaults() Config {
	d := Default()
	if c.Root == "" {
		c.Root = d.Root
	}
	if c.RootName == "" {
		c.RootName = d.RootName
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.LockFile == "" {
		c.LockFile = d.LockFile
	}
	if c.Budget <= 0 {
		c.Budget = d.Budget
	}
	if c.ResumeDelay <= 0 {
		c.ResumeDelay = d.ResumeDelay
	}
	return c
}
