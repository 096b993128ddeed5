// Package runnertest provides a recording runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/JuanVilla424/pybootstrap/internal/runner"
)

// Call is one recorded invocation.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Line returns the call as "name arg1 arg2".
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Handler produces the outcome of a call.
type Handler func(c Call) (runner.Result, error)

// Stub answers calls from registered handlers keyed by command line.
// Unregistered commands behave like a missing executable.
type Stub struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

func New() *Stub {
	return &Stub{handlers: make(map[string]Handler)}
}

// On registers h for the exact command line, e.g. "git rev-parse --show-toplevel".
func (s *Stub) On(cmdline string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[cmdline] = h
}

// OnResult registers a fixed outcome for cmdline.
func (s *Stub) OnResult(cmdline string, res runner.Result, err error) {
	s.On(cmdline, func(Call) (runner.Result, error) { return res, err })
}

// OK registers a successful call printing stdout.
func (s *Stub) OK(cmdline, stdout string) {
	s.OnResult(cmdline, runner.Result{Stdout: stdout}, nil)
}

func (s *Stub) Run(ctx context.Context, dir, name string, args ...string) (runner.Result, error) {
	c := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}

	s.mu.Lock()
	s.calls = append(s.calls, c)
	h, ok := s.handlers[c.Line()]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return runner.Result{}, err
	}
	if !ok {
		return runner.Result{}, NotFound(name)
	}
	return h(c)
}

// Calls returns a copy of the recorded calls.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Lines returns the recorded calls as command lines.
func (s *Stub) Lines() []string {
	var lines []string
	for _, c := range s.Calls() {
		lines = append(lines, c.Line())
	}
	return lines
}

// NotFound mimics os/exec's error for a missing executable.
func NotFound(name string) error {
	return fmt.Errorf("run %s: %w", name, &exec.Error{Name: name, Err: exec.ErrNotFound})
}

// Exit builds the error of a command exiting with code.
func Exit(code int, stderr string, name string, args ...string) error {
	return &runner.ExitError{Name: name, Args: args, Code: code, Stderr: stderr}
}
