// Package scaffold turns a cloned template into a project: it removes
// template leftovers, generates a fresh layout with the dependency manager
// and merges that layout into the repository.
package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JuanVilla424/pybootstrap/internal/logs"
	"github.com/JuanVilla424/pybootstrap/internal/runner"
)

const stagingPattern = ".pybootstrap-*"

// Clean removes paths relative to dir. Missing paths and removal errors
// are ignored. It returns the paths that existed before removal.
func Clean(dir string, paths []string, log *logs.Logger) []string {
	var removed []string
	for _, p := range paths {
		target := filepath.Join(dir, p)
		_, statErr := os.Lstat(target)
		if err := os.RemoveAll(target); err != nil {
			if log != nil {
				log.Debugf("clean", "remove %s: %v", p, err)
			}
			continue
		}
		if statErr == nil {
			removed = append(removed, p)
			if log != nil {
				log.Infof("clean", "removed %s", p)
			}
		}
	}
	return removed
}

// Manager drives the dependency manager CLI (poetry).
type Manager struct {
	Runner runner.Runner
	Log    *logs.Logger
	// Command is the dependency manager executable.
	Command string
}

// New generates a project called name with "<manager> new <name>" in a
// private staging directory inside dir, merges it into dir copy-if-absent
// and removes the staging directory on every path out.
func (m *Manager) New(ctx context.Context, dir, name string) (MergeResult, error) {
	staging, err := os.MkdirTemp(dir, stagingPattern)
	if err != nil {
		return MergeResult{}, fmt.Errorf("create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			m.warnf("remove %s: %v", staging, err)
		}
	}()

	if err := m.run(ctx, staging, "new", name); err != nil {
		return MergeResult{}, err
	}

	generated := filepath.Join(staging, name)
	if info, err := os.Stat(generated); err != nil || !info.IsDir() {
		return MergeResult{}, fmt.Errorf("%s new did not create %s", m.Command, name)
	}

	res, err := Merge(generated, dir)
	if err != nil {
		return res, fmt.Errorf("merge scaffold: %w", err)
	}
	for _, s := range res.Skipped {
		m.debugf("kept existing %s", s)
	}
	m.infof("merged %d entries, kept %d existing", len(res.Copied), len(res.Skipped))
	return res, nil
}

// Add adds pkg to the dependency group in dir's manifest.
func (m *Manager) Add(ctx context.Context, dir, group, pkg string) error {
	return m.run(ctx, dir, "add", "--group", group, pkg)
}

func (m *Manager) run(ctx context.Context, dir string, args ...string) error {
	cmdline := m.Command + " " + strings.Join(args, " ")
	m.debugf("run %s (in %s)", cmdline, dir)
	res, err := m.Runner.Run(ctx, dir, m.Command, args...)
	if out := strings.TrimSpace(res.Stdout); out != "" {
		m.debugf("%s: %s", cmdline, out)
	}
	if err != nil {
		if m.Log != nil {
			m.Log.Errorf("scaffold", "%s: %v", cmdline, err)
		}
		return err
	}
	return nil
}

func (m *Manager) debugf(format string, args ...any) {
	if m.Log != nil {
		m.Log.Debugf("scaffold", format, args...)
	}
}

func (m *Manager) infof(format string, args ...any) {
	if m.Log != nil {
		m.Log.Infof("scaffold", format, args...)
	}
}

func (m *Manager) warnf(format string, args ...any) {
	if m.Log != nil {
		m.Log.Warnf("scaffold", format, args...)
	}
}
