// Package bootstrap prepares a cloned Python project template: it removes
// template leftovers, makes sure the developer tools are installed, scaffolds
// the project with the dependency manager and adds the test dependency.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/JuanVilla424/pybootstrap/internal/config"
	"github.com/JuanVilla424/pybootstrap/internal/gitrepo"
	"github.com/JuanVilla424/pybootstrap/internal/logs"
	"github.com/JuanVilla424/pybootstrap/internal/progress"
	"github.com/JuanVilla424/pybootstrap/internal/runner"
	"github.com/JuanVilla424/pybootstrap/internal/scaffold"
	"github.com/JuanVilla424/pybootstrap/internal/tools"
)

// Bootstrapper runs the bootstrap steps in Dir.
type Bootstrapper struct {
	Dir      string
	Config   config.Config
	Runner   runner.Runner
	Reporter progress.Reporter
	Log      *logs.Logger
	// AfterInstall runs after each tool install, e.g. to extend PATH.
	AfterInstall func()
}

type step struct {
	name string
	fn   func(ctx context.Context) error
}

// Run executes every step in order and stops at the first failure.
// Nothing is retried or rolled back.
func (b *Bootstrapper) Run(ctx context.Context) error {
	var name string
	steps := []step{{"Cleaning template files", b.clean}}
	for _, tc := range b.Config.Tools {
		t := tools.Tool{Name: tc.Name, Method: tools.Method(tc.Method)}
		steps = append(steps, step{"Checking " + t.Name, func(ctx context.Context) error {
			return b.ensureTool(ctx, t)
		}})
	}
	steps = append(steps,
		step{"Resolving project name", func(ctx context.Context) error {
			var err error
			name, err = gitrepo.RootName(ctx, b.Runner, b.Dir)
			if err == nil {
				b.infof("project name: %s", name)
			}
			return err
		}},
		step{"Scaffolding project", func(ctx context.Context) error {
			_, err := b.manager().New(ctx, b.Dir, name)
			return err
		}},
		step{"Adding " + b.Config.TestPackage, func(ctx context.Context) error {
			return b.manager().Add(ctx, b.Dir, b.Config.TestGroup, b.Config.TestPackage)
		}},
	)

	for i, s := range steps {
		if err := b.runStep(ctx, s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.name, err)
		}
	}
	return nil
}

func (b *Bootstrapper) runStep(ctx context.Context, s step) (err error) {
	announced := b.Reporter.Begin(s.name)
	defer announced.End(&err)

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.fn(ctx)
}

func (b *Bootstrapper) clean(context.Context) error {
	scaffold.Clean(b.Dir, b.Config.CleanPaths, b.Log)
	return nil
}

func (b *Bootstrapper) ensureTool(ctx context.Context, t tools.Tool) error {
	in := &tools.Installer{
		Runner:       b.Runner,
		Log:          b.Log,
		Python:       b.Config.Python,
		AfterInstall: b.AfterInstall,
	}
	_, err := in.Ensure(ctx, b.Dir, t)
	return err
}

func (b *Bootstrapper) manager() *scaffold.Manager {
	return &scaffold.Manager{Runner: b.Runner, Log: b.Log, Command: b.Config.DependencyManager}
}

func (b *Bootstrapper) infof(format string, args ...any) {
	if b.Log != nil {
		b.Log.Infof("bootstrap", format, args...)
	}
}
