// Package tools verifies that developer tools are on PATH and installs the
// missing ones with pip or Homebrew.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JuanVilla424/pybootstrap/internal/logs"
	"github.com/JuanVilla424/pybootstrap/internal/runner"
)

// Method is how a missing tool gets installed.
type Method string

const (
	Pip  Method = "pip"
	Brew Method = "brew"
)

// ErrUnsupportedMethod is returned for any Method other than Pip or Brew.
var ErrUnsupportedMethod = errors.New("installation method not supported")

// Tool describes a tool to check and, if absent, install.
type Tool struct {
	Name   string
	Method Method
}

func (m Method) valid() bool {
	return m == Pip || m == Brew
}

// Installer checks and installs tools through a runner.Runner.
type Installer struct {
	Runner runner.Runner
	Log    *logs.Logger
	// Python is the interpreter whose pip installs Pip tools.
	// Empty means the first of python3, python found on PATH.
	Python string
	// AfterInstall runs after a successful install, e.g. to refresh PATH.
	AfterInstall func()
}

// Ensure makes sure t is available. It runs "<name> --version" and installs
// the tool with its method only when the executable cannot be found.
// It reports whether an install happened.
func (in *Installer) Ensure(ctx context.Context, dir string, t Tool) (bool, error) {
	if !t.Method.valid() {
		return false, fmt.Errorf("%s via %q: %w", t.Name, t.Method, ErrUnsupportedMethod)
	}

	version, err := in.version(ctx, dir, t.Name)
	if err == nil {
		in.debugf("%s found: %s", t.Name, version)
		return false, nil
	}
	if !runner.IsNotFound(err) {
		return false, fmt.Errorf("check %s: %w", t.Name, err)
	}

	in.infof("%s not found, installing with %s", t.Name, t.Method)
	name, args := in.installCommand(t)
	res, err := in.Runner.Run(ctx, dir, name, args...)
	if out := strings.TrimSpace(res.Stdout); out != "" {
		in.debugf("%s: %s", name, trimOutput(out))
	}
	if err != nil {
		return false, fmt.Errorf("install %s: %w", t.Name, err)
	}
	in.successf("%s installed", t.Name)

	if in.AfterInstall != nil {
		in.AfterInstall()
	}
	if _, err := in.version(ctx, dir, t.Name); err != nil && in.Log != nil {
		in.Log.Warnf("tools", "%s installed but still not runnable: %v", t.Name, err)
	}
	return true, nil
}

// version returns the first line of "<name> --version".
func (in *Installer) version(ctx context.Context, dir, name string) (string, error) {
	res, err := in.Runner.Run(ctx, dir, name, "--version")
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(strings.SplitN(res.Stdout, "\n", 2)[0])
	return line, nil
}

func (in *Installer) installCommand(t Tool) (string, []string) {
	switch t.Method {
	case Pip:
		return in.python(), []string{"-m", "pip", "install", t.Name}
	default:
		return "brew", []string{"install", t.Name}
	}
}

func (in *Installer) python() string {
	if in.Python != "" {
		return in.Python
	}
	if p := runner.LookPath("python3", "python"); p != "" {
		return p
	}
	return "python3"
}

func (in *Installer) debugf(format string, args ...any) {
	if in.Log != nil {
		in.Log.Debugf("tools", format, args...)
	}
}

func (in *Installer) infof(format string, args ...any) {
	if in.Log != nil {
		in.Log.Infof("tools", format, args...)
	}
}

func (in *Installer) successf(format string, args ...any) {
	if in.Log != nil {
		in.Log.Successf("tools", format, args...)
	}
}

// trimOutput trims command output to a reasonable length for log lines.
func trimOutput(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
