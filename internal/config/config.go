// Package config loads the optional todotxt config file and resolves which task
// list a command works on.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/todotxt/internal/store"
)

const (
	appName         = "todotxt"
	DefaultFileName = "todo.txt"

	EnvFile   = "TODOTXT_FILE"
	EnvConfig = "TODOTXT_CONFIG"
)

var ErrNoFile = errors.New("no task list file: pass --file, set " + EnvFile + ", or make the home directory available")

type Config struct {
	File      string `yaml:"file" toml:"file"`
	Sort      string `yaml:"sort" toml:"sort"`
	Mode      string `yaml:"mode" toml:"mode"`
	Color     *bool  `yaml:"color" toml:"color"`
	ExportDir string `yaml:"export_dir" toml:"export_dir"`

	// Source is the file the values came from; empty when defaults are used.
	Source string `yaml:"-" toml:"-"`
}

// DefaultPath is <user config dir>/todotxt/config.yaml, or config.toml when only
// that one exists.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, appName)
	yamlPath := filepath.Join(dir, "config.yaml")
	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(yamlPath); err != nil {
		if _, err := os.Stat(tomlPath); err == nil {
			return tomlPath, nil
		}
	}
	return yamlPath, nil
}

// Load reads the config at path. With an empty path the env override and then
// the default location are tried; a missing default file just yields defaults.
func Load(path string) (*Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		if env := strings.TrimSpace(os.Getenv(EnvConfig)); env != "" {
			path = env
			explicit = true
		}
	}
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &Config{}, nil
		}
		path = p
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Parse decodes config bytes; format is "yaml" or "toml".
func Parse(b []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "toml":
		md, err := toml.Decode(string(b), &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return &cfg, nil
}

// ResolveFile picks the task list: flag, then TODOTXT_FILE, then the config
// file, then ~/todo.txt.
func (c *Config) ResolveFile(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return store.ExpandHome(v), nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvFile)); v != "" {
		return store.ExpandHome(v), nil
	}
	if v := strings.TrimSpace(c.File); v != "" {
		return store.ExpandHome(v), nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoFile
	}
	return filepath.Join(home, DefaultFileName), nil
}

// ResolveExportDir defaults to an "exports" directory next to the task list.
func (c *Config) ResolveExportDir(flagValue, file string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return store.ExpandHome(v)
	}
	if v := strings.TrimSpace(c.ExportDir); v != "" {
		return store.ExpandHome(v)
	}
	return filepath.Join(filepath.Dir(file), "exports")
}

func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}
