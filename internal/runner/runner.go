// Package runner runs external commands on behalf of the bootstrap steps.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when the executable is not on PATH.
var ErrNotFound = exec.ErrNotFound

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Name   string
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	cmdline := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	return fmt.Sprintf("%s exited with status %d", cmdline, e.Code)
}

// Runner is the seam between the bootstrap steps and the operating system.
type Runner interface {
	// Run executes name with args in dir and blocks until it exits.
	// A missing executable yields an error wrapping ErrNotFound, a non-zero
	// exit yields *ExitError.
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// New creates a Runner backed by os/exec.
func New() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return res, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return res, &ExitError{
			Name:   name,
			Args:   args,
			Code:   exitErr.ExitCode(),
			Stderr: res.Stderr,
		}
	}
	return res, fmt.Errorf("run %s: %w", name, err)
}

// IsNotFound reports whether err means the executable could not be found.
// A missing working directory is not a missing executable.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	// An explicit path that does not exist fails in fork/exec; a bad
	// working directory fails in chdir.
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op != "chdir" && errors.Is(pathErr.Err, fs.ErrNotExist)
	}
	return false
}

// LookPath returns the first of names found on PATH, or "" if none is.
func LookPath(names ...string) string {
	for _, n := range names {
		if p, err := exec.LookPath(n); err == nil {
			return p
		}
	}
	return ""
}
