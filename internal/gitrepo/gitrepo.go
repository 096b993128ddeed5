// Package gitrepo resolves the repository a bootstrap runs in.
package gitrepo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JuanVilla424/pybootstrap/internal/runner"
)

// NotARepositoryError means dir is not inside a git working tree.
type NotARepositoryError struct {
	Dir   string
	Cause error
}

func (e *NotARepositoryError) Error() string {
	return "Not in a git repository"
}

func (e *NotARepositoryError) Unwrap() error {
	return e.Cause
}

// Root returns the absolute top-level directory of the repository containing dir.
func Root(ctx context.Context, r runner.Runner, dir string) (string, error) {
	res, err := r.Run(ctx, dir, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", &NotARepositoryError{Dir: dir, Cause: err}
	}

	out := strings.TrimSpace(res.Stdout)
	if out == "" || strings.Contains(out, "\n") {
		return "", &NotARepositoryError{
			Dir:   dir,
			Cause: fmt.Errorf("unexpected git rev-parse output %q", res.Stdout),
		}
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	return filepath.Clean(out), nil
}

// RootName returns the final path component of the repository root.
func RootName(ctx context.Context, r runner.Runner, dir string) (string, error) {
	root, err := Root(ctx, r, dir)
	if err != nil {
		return "", err
	}
	name := filepath.Base(root)
	if name == "." || name == string(filepath.Separator) {
		return "", &NotARepositoryError{Dir: dir, Cause: fmt.Errorf("repository root %q has no name", root)}
	}
	return name, nil
}
