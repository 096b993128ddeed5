// Package progress announces the start and end of named steps on a terminal.
//
//	step := reporter.Begin("Cleaning")
//	defer step.End(&err)
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/JuanVilla424/pybootstrap/internal/logs"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// Reporter starts steps.
type Reporter interface {
	Begin(name string) *Step
}

// Step is a running step. End must be called exactly once; later calls
// are ignored.
type Step struct {
	name   string
	start  time.Time
	log    *logs.Logger
	finish func(err error)
	once   sync.Once
}

func newStep(name string, log *logs.Logger, finish func(error)) *Step {
	if log != nil {
		log.Infof("step", "%s started", name)
	}
	return &Step{name: name, start: time.Now(), log: log, finish: finish}
}

// End prints the completion notice for the error *errp points to. A nil
// errp or nil error is success.
func (s *Step) End(errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	s.once.Do(func() {
		elapsed := time.Since(s.start).Round(time.Millisecond)
		if s.log != nil {
			if err != nil {
				s.log.Errorf("step", "%s failed after %s: %v", s.name, elapsed, err)
			} else {
				s.log.Successf("step", "%s done in %s", s.name, elapsed)
			}
		}
		s.finish(err)
	})
}

// New picks the renderer for out: the spinner on an interactive terminal
// unless plain is set, line notices otherwise.
func New(out *os.File, plain bool, log *logs.Logger) Reporter {
	tty := isTerminal(out)
	if tty && !plain {
		return NewSpinner(out, DefaultFormatter(), log)
	}
	return NewPlain(out, tty, DefaultFormatter(), log)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Plain writes one notice per step event. On a terminal the running
// notice is replaced by the final one.
type Plain struct {
	w   io.Writer
	tty bool
	f   Formatter
	log *logs.Logger
	mu  sync.Mutex
}

func NewPlain(w io.Writer, tty bool, f Formatter, log *logs.Logger) *Plain {
	return &Plain{w: w, tty: tty, f: f, log: log}
}

func (p *Plain) Begin(name string) *Step {
	p.mu.Lock()
	if p.tty {
		fmt.Fprint(p.w, p.f.Running(name))
	} else {
		fmt.Fprintln(p.w, p.f.Running(name))
	}
	p.mu.Unlock()

	return newStep(name, p.log, func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.tty {
			fmt.Fprint(p.w, clearLine)
		}
		if err != nil {
			fmt.Fprintln(p.w, p.f.Failed(name, err))
		} else {
			fmt.Fprintln(p.w, p.f.Done(name))
		}
	})
}
