// Package config loads pybootstrap settings: built-in defaults, an optional
// .pybootstrap.json in the repository and PYBOOTSTRAP_* environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/JuanVilla424/pybootstrap/internal/logs"
)

// FileName is the optional per-repository config file.
const FileName = ".pybootstrap.json"

// Install methods.
const (
	MethodPip  = "pip"
	MethodBrew = "brew"
)

type ToolConfig struct {
	Name   string `json:"name"`
	Method string `json:"method"`
}

type Config struct {
	CleanPaths        []string     `json:"clean_paths"`
	Tools             []ToolConfig `json:"tools"`
	DependencyManager string       `json:"dependency_manager"`
	TestPackage       string       `json:"test_package"`
	TestGroup         string       `json:"test_group"`
	Python            string       `json:"python,omitempty"`
	LogFile           string       `json:"log_file,omitempty"`
	LogRetentionDays  int          `json:"log_retention_days"`
	Debug             bool         `json:"debug,omitempty"`
	Plain             bool         `json:"plain,omitempty"`
}

// Envs are the PYBOOTSTRAP_* overrides. Unset variables leave the field nil.
type Envs struct {
	TestPackage *string `env:"PYBOOTSTRAP_TEST_PACKAGE"`
	TestGroup   *string `env:"PYBOOTSTRAP_TEST_GROUP"`
	Python      *string `env:"PYBOOTSTRAP_PYTHON"`
	LogFile     *string `env:"PYBOOTSTRAP_LOG_FILE"`
	Debug       *bool   `env:"PYBOOTSTRAP_DEBUG"`
	Plain       *bool   `env:"PYBOOTSTRAP_PLAIN"`
}

func (e Envs) apply(cfg *Config) {
	if e.TestPackage != nil {
		cfg.TestPackage = *e.TestPackage
	}
	if e.TestGroup != nil {
		cfg.TestGroup = *e.TestGroup
	}
	if e.Python != nil {
		cfg.Python = *e.Python
	}
	if e.LogFile != nil {
		cfg.LogFile = *e.LogFile
	}
	if e.Debug != nil {
		cfg.Debug = *e.Debug
	}
	if e.Plain != nil {
		cfg.Plain = *e.Plain
	}
}

func DefaultConfig() Config {
	return Config{
		CleanPaths: []string{"tests", "python_template", "python-template"},
		Tools: []ToolConfig{
			{Name: "poetry", Method: MethodPip},
			{Name: "pre-commit", Method: MethodBrew},
		},
		DependencyManager: "poetry",
		TestPackage:       "pytest",
		TestGroup:         "test",
		LogFile:           logs.DefaultPath(),
		LogRetentionDays:  30,
	}
}

// Load returns the defaults overlaid with dir/.pybootstrap.json, if present,
// and then with PYBOOTSTRAP_* environment variables.
func Load(dir string) (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, err
	}

	envs := Envs{}
	if err := env.Parse(&envs); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	envs.apply(&cfg)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.DependencyManager == "" {
		return fmt.Errorf("dependency_manager must not be empty")
	}
	if c.TestPackage == "" {
		return fmt.Errorf("test_package must not be empty")
	}
	if c.TestGroup == "" {
		return fmt.Errorf("test_group must not be empty")
	}
	for i, t := range c.Tools {
		if t.Name == "" {
			return fmt.Errorf("tools[%d]: name must not be empty", i)
		}
		if t.Method != MethodPip && t.Method != MethodBrew {
			return fmt.Errorf("tools[%d] (%s): unsupported install method %q", i, t.Name, t.Method)
		}
	}
	for i, p := range c.CleanPaths {
		if !cleanable(p) {
			return fmt.Errorf("clean_paths[%d]: %q must be a relative path inside the repository", i, p)
		}
	}
	return nil
}

// cleanable reports whether p names an entry strictly below the repository
// root that is neither git metadata nor the config file.
func cleanable(p string) bool {
	if p == "" || filepath.IsAbs(p) || !filepath.IsLocal(p) {
		return false
	}
	clean := filepath.Clean(p)
	if clean == "." || clean == FileName {
		return false
	}
	first := strings.SplitN(filepath.ToSlash(clean), "/", 2)[0]
	return first != ".git"
}
