package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JuanVilla424/pybootstrap/internal/bootstrap"
	"github.com/JuanVilla424/pybootstrap/internal/config"
	"github.com/JuanVilla424/pybootstrap/internal/gitrepo"
	"github.com/JuanVilla424/pybootstrap/internal/logs"
	"github.com/JuanVilla424/pybootstrap/internal/pathutil"
	"github.com/JuanVilla424/pybootstrap/internal/progress"
	"github.com/JuanVilla424/pybootstrap/internal/runner"
)

var (
	version  = "1.0.0"
	buildNum = "0"
)

// recentLimit caps the log entries shown under a failure.
const recentLimit = 5

// session holds what the error report needs after the command returns.
type session struct {
	log *logs.Logger
}

func main() {
	pathutil.AugmentPath()

	s := &session{}
	err := newRootCmd(s).Execute()
	if err != nil {
		var recent []logs.LogEntry
		if s.log != nil {
			recent = recentProblems(s.log.Snapshot(), recentLimit)
		}
		reportError(os.Stderr, progress.DefaultFormatter(), err, recent)
	}
	os.Exit(exitCode(err))
}

func newRootCmd(s *session) *cobra.Command {
	var (
		debugFlag bool
		plainFlag bool
		dir       string
	)

	rootCmd := &cobra.Command{
		Use:           "pybootstrap",
		Short:         "Turn a cloned Python template into a ready-to-use Poetry project",
		Version:       version + "+" + buildNum,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			info, err := os.Stat(absDir)
			if err != nil {
				return fmt.Errorf("working directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("working directory %s is not a directory", absDir)
			}

			cfg, err := config.Load(absDir)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if debugFlag {
				cfg.Debug = true
			}
			if plainFlag {
				cfg.Plain = true
			}

			logs.CleanupLogs(cfg.LogFile, cfg.LogRetentionDays)
			log := logs.New(cfg.LogFile, 200)
			defer log.Close()
			s.log = log
			log.SetDebug(cfg.Debug)
			log.Infof("main", "pybootstrap %s in %s", cmd.Version, absDir)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			b := &bootstrap.Bootstrapper{
				Dir:      absDir,
				Config:   cfg,
				Runner:   runner.New(),
				Reporter: progress.New(os.Stdout, cfg.Plain, log),
				Log:      log,
				AfterInstall: func() {
					for _, p := range pathutil.AugmentPath() {
						log.Debugf("main", "added %s to PATH", p)
					}
				},
			}
			if err := b.Run(ctx); err != nil {
				log.Errorf("main", "%v", err)
				return err
			}
			log.Successf("main", "bootstrap complete")
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&plainFlag, "plain", false, "Print plain step lines instead of a spinner")
	rootCmd.Flags().StringVar(&dir, "dir", ".", "Repository working directory")

	return rootCmd
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var notRepo *gitrepo.NotARepositoryError
	if errors.As(err, &notRepo) {
		return 1
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

func reportError(w io.Writer, f progress.Formatter, err error, recent []logs.LogEntry) {
	red := f.Palette.Style(progress.Red)

	var notRepo *gitrepo.NotARepositoryError
	if errors.As(err, &notRepo) {
		fmt.Fprintln(w, red.Render(notRepo.Error()))
	} else {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			if stderr := strings.TrimSpace(exitErr.Stderr); stderr != "" {
				fmt.Fprintln(w, stderr)
			}
		}
		fmt.Fprintln(w, red.Render("Error: "+err.Error()))
	}

	if len(recent) == 0 {
		return
	}
	yellow := f.Palette.Style(progress.Yellow)
	fmt.Fprintln(w, yellow.Render("Recent log entries:"))
	for _, e := range recent {
		fmt.Fprintln(w, "  "+e.String())
	}
}

// recentProblems returns the last n warnings and errors, leaving out the
// step and run summaries that repeat the returned error.
func recentProblems(entries []logs.LogEntry, n int) []logs.LogEntry {
	var out []logs.LogEntry
	for _, e := range entries {
		if e.Level < logs.LevelWarn || e.Step == "step" || e.Step == "main" {
			continue
		}
		out = append(out, e)
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
