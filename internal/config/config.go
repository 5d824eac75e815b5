package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the optional project config file looked up at the project root.
const FileName = "spdocs.yaml"

type Engine struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Config struct {
	Manifest        string   `yaml:"manifest"`
	OutDir          string   `yaml:"out-dir"`
	RunLog          string   `yaml:"run-log"`
	HistoryDB       string   `yaml:"history-db"`
	RepoURL         string   `yaml:"repo-url"`
	RawURL          string   `yaml:"raw-url"`
	SourceExt       string   `yaml:"source-ext"`
	ImageExt        string   `yaml:"image-ext"`
	TextExts        []string `yaml:"text-exts"`
	InlineLineLimit int      `yaml:"inline-line-limit"`
	Engine          Engine   `yaml:"engine"`

	// Root is the project root every relative path is resolved against.
	// It is never read from the file.
	Root string `yaml:"-"`
}

// Load reads the config file at path, if any, and returns a validated Config
// rooted at projectRoot. A missing file yields the defaults.
func Load(path, projectRoot string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	cfg.Root = projectRoot
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve returns p joined to the project root unless it is already absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// ManifestPath returns the absolute manifest location.
func (c *Config) ManifestPath() string { return c.Resolve(c.Manifest) }

// OutPath returns the absolute directory pages are written to.
func (c *Config) OutPath() string { return c.Resolve(c.OutDir) }

// RunLogPath returns the absolute run log location.
func (c *Config) RunLogPath() string { return c.Resolve(c.RunLog) }

// HistoryPath returns the absolute sqlite history location.
func (c *Config) HistoryPath() string { return c.Resolve(c.HistoryDB) }

// FindProjectRoot walks up from dir looking for spdocs.yaml. If none is
// found, dir itself is the root.
func FindProjectRoot(dir string) string {
	start := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
