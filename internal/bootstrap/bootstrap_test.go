package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JuanVilla424/pybootstrap/internal/config"
	"github.com/JuanVilla424/pybootstrap/internal/gitrepo"
	"github.com/JuanVilla424/pybootstrap/internal/logs"
	"github.com/JuanVilla424/pybootstrap/internal/progress"
	"github.com/JuanVilla424/pybootstrap/internal/runner"
	"github.com/JuanVilla424/pybootstrap/internal/runner/runnertest"
	"github.com/JuanVilla424/pybootstrap/internal/tools"
)

// newRepo creates a template checkout in a directory named myproj.
func newRepo(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "myproj")
	for rel, content := range map[string]string{
		"README.md":                       "# template\n",
		".pre-commit-config.yaml":         "repos: []\n",
		"tests/test_template.py":          "def test(): pass\n",
		"python_template/__init__.py":     "",
		"python-template/placeholder.txt": "",
	} {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func fakePoetryNew(c runnertest.Call) (runner.Result, error) {
	name := c.Args[len(c.Args)-1]
	root := filepath.Join(c.Dir, name)
	for rel, content := range map[string]string{
		"pyproject.toml":                       "[tool.poetry]\nname = \"" + name + "\"\n",
		"README.md":                            "",
		filepath.Join(name, "__init__.py"):    "",
		filepath.Join("tests", "__init__.py"): "",
	} {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return runner.Result{}, err
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return runner.Result{}, err
		}
	}
	return runner.Result{}, nil
}

// stubTools answers the happy path for every command the bootstrap issues.
func stubTools(dir string) *runnertest.Stub {
	stub := runnertest.New()
	stub.OK("poetry --version", "Poetry (version 1.8.3)\n")
	stub.OK("pre-commit --version", "pre-commit 3.7.1\n")
	stub.OK("git rev-parse --show-toplevel", dir+"\n")
	stub.On("poetry new myproj", fakePoetryNew)
	stub.OK("poetry add --group test pytest", "")
	return stub
}

func newBootstrapper(dir string, stub *runnertest.Stub, out *bytes.Buffer) *Bootstrapper {
	cfg := config.DefaultConfig()
	cfg.Python = "python3"
	log := logs.New("", 200)
	return &Bootstrapper{
		Dir:      dir,
		Config:   cfg,
		Runner:   stub,
		Reporter: progress.NewPlain(out, false, progress.Formatter{}, log),
		Log:      log,
	}
}

func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != root {
			rel, _ := filepath.Rel(root, path)
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(out)
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	dir := newRepo(t)
	stub := stubTools(dir)
	var out bytes.Buffer

	if err := newBootstrapper(dir, stub, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v\noutput:\n%s", err, out.String())
	}

	wantTree := []string{
		".pre-commit-config.yaml",
		"README.md",
		"myproj",
		filepath.Join("myproj", "__init__.py"),
		"pyproject.toml",
		"tests",
		filepath.Join("tests", "__init__.py"),
	}
	if diff := cmp.Diff(wantTree, listTree(t, dir)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	readme, _ := os.ReadFile(filepath.Join(dir, "README.md"))
	if string(readme) != "# template\n" {
		t.Errorf("README.md overwritten: %q", readme)
	}

	wantCalls := []string{
		"poetry --version",
		"pre-commit --version",
		"git rev-parse --show-toplevel",
		"poetry new myproj",
		"poetry add --group test pytest",
	}
	if diff := cmp.Diff(wantCalls, stub.Lines()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	calls := stub.Calls()
	if last := calls[len(calls)-1]; last.Dir != dir {
		t.Errorf("poetry add ran in %q, want %q", last.Dir, dir)
	}

	for _, name := range []string{"Cleaning template files", "Checking poetry", "Checking pre-commit", "Scaffolding project", "Adding pytest"} {
		if !strings.Contains(out.String(), "✅ "+name) {
			t.Errorf("missing completion notice for %q in:\n%s", name, out.String())
		}
	}
}

func TestRun_InstallsMissingTools(t *testing.T) {
	dir := newRepo(t)
	stub := stubTools(dir)
	installed := false
	stub.On("pre-commit --version", func(runnertest.Call) (runner.Result, error) {
		if !installed {
			return runner.Result{}, runnertest.NotFound("pre-commit")
		}
		return runner.Result{Stdout: "pre-commit 3.7.1\n"}, nil
	})
	stub.On("brew install pre-commit", func(runnertest.Call) (runner.Result, error) {
		installed = true
		return runner.Result{}, nil
	})

	b := newBootstrapper(dir, stub, &bytes.Buffer{})
	refreshed := 0
	b.AfterInstall = func() { refreshed++ }

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if refreshed != 1 {
		t.Errorf("AfterInstall called %d times, want 1", refreshed)
	}

	want := []string{
		"poetry --version",
		"pre-commit --version",
		"brew install pre-commit",
		"pre-commit --version",
		"git rev-parse --show-toplevel",
		"poetry new myproj",
		"poetry add --group test pytest",
	}
	if diff := cmp.Diff(want, stub.Lines()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_NotARepository(t *testing.T) {
	dir := newRepo(t)
	stub := stubTools(dir)
	stub.OnResult("git rev-parse --show-toplevel", runner.Result{},
		runnertest.Exit(128, "fatal: not a git repository", "git", "rev-parse", "--show-toplevel"))
	var out bytes.Buffer

	err := newBootstrapper(dir, stub, &out).Run(context.Background())

	var notRepo *gitrepo.NotARepositoryError
	if !errors.As(err, &notRepo) {
		t.Fatalf("expected NotARepositoryError, got %v", err)
	}
	for _, line := range stub.Lines() {
		if strings.HasPrefix(line, "poetry new") || strings.HasPrefix(line, "poetry add") {
			t.Errorf("unexpected call after failure: %s", line)
		}
	}
	if !strings.Contains(out.String(), "❌ Resolving project name: Not in a git repository") {
		t.Errorf("missing failure notice in:\n%s", out.String())
	}
	// Cleaning already happened.
	if _, err := os.Stat(filepath.Join(dir, "python_template")); !os.IsNotExist(err) {
		t.Errorf("python_template still present")
	}
}

func TestRun_UnsupportedMethodStopsBeforeAnyProcess(t *testing.T) {
	dir := newRepo(t)
	stub := stubTools(dir)
	b := newBootstrapper(dir, stub, &bytes.Buffer{})
	b.Config.Tools = []config.ToolConfig{{Name: "poetry", Method: "apt"}}

	err := b.Run(context.Background())
	if !errors.Is(err, tools.ErrUnsupportedMethod) {
		t.Fatalf("expected ErrUnsupportedMethod, got %v", err)
	}
	if lines := stub.Lines(); len(lines) != 0 {
		t.Errorf("expected no calls, got %v", lines)
	}
}

func TestRun_FailureKeepsExitStatus(t *testing.T) {
	dir := newRepo(t)
	stub := stubTools(dir)
	stub.OnResult("poetry add --group test pytest", runner.Result{},
		runnertest.Exit(2, "SolverProblemError", "poetry", "add", "--group", "test", "pytest"))

	err := newBootstrapper(dir, stub, &bytes.Buffer{}).Run(context.Background())

	var exitErr *runner.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *runner.ExitError, got %v", err)
	}
	if exitErr.Code != 2 {
		t.Errorf("code = %d, want 2", exitErr.Code)
	}
	// Scaffold was merged and staging removed before the failing step.
	for _, e := range listTree(t, dir) {
		if strings.HasPrefix(e, ".pybootstrap-") {
			t.Errorf("staging directory left behind: %s", e)
		}
	}
}

func TestRun_CancelledContext(t *testing.T) {
	dir := newRepo(t)
	stub := stubTools(dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newBootstrapper(dir, stub, &bytes.Buffer{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if lines := stub.Lines(); len(lines) != 0 {
		t.Errorf("expected no calls, got %v", lines)
	}
}
