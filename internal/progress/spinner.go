package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/JuanVilla424/pybootstrap/internal/logs"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const frameInterval = 100 * time.Millisecond

type tickMsg time.Time

type doneMsg struct{ err error }

type spinnerModel struct {
	name  string
	f     Formatter
	frame int
	done  bool
	final string
}

func newSpinnerModel(name string, f Formatter) spinnerModel {
	return spinnerModel{name: name, f: f}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m spinnerModel) Init() tea.Cmd {
	return tickEvery(frameInterval)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tickEvery(frameInterval)
	case doneMsg:
		m.done = true
		if msg.err != nil {
			m.final = m.f.Failed(m.name, msg.err)
		} else {
			m.final = m.f.Done(m.name)
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return m.final + "\n"
	}
	return m.f.Frame(spinnerFrames[m.frame], m.name)
}

// Spinner animates each step with a bubbletea program that runs until
// the step ends.
type Spinner struct {
	w   io.Writer
	f   Formatter
	log *logs.Logger
}

func NewSpinner(w io.Writer, f Formatter, log *logs.Logger) *Spinner {
	return &Spinner{w: w, f: f, log: log}
}

func (s *Spinner) Begin(name string) *Step {
	// The group context is cancelled once the program exits, so a late
	// Send never blocks.
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p := tea.NewProgram(newSpinnerModel(name, s.f),
		tea.WithOutput(s.w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithContext(gctx),
	)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	return newStep(name, s.log, func(err error) {
		p.Send(doneMsg{err: err})
		if runErr := g.Wait(); runErr != nil {
			if s.log != nil {
				s.log.Warnf("progress", "spinner for %s: %v", name, runErr)
			}
			final := s.f.Done(name)
			if err != nil {
				final = s.f.Failed(name, err)
			}
			fmt.Fprintln(s.w, final)
		}
	})
}
