package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// userToolDirs lists where pip --user, pyenv, the poetry installer and
// Homebrew put executables.
func userToolDirs(home string) []string {
	dirs := []string{
		"/opt/homebrew/bin",
		"/opt/homebrew/sbin",
		"/home/linuxbrew/.linuxbrew/bin",
		"/usr/local/bin",
		"/usr/local/sbin",
	}
	if home == "" {
		return dirs
	}
	return append([]string{
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, ".pyenv", "shims"),
		filepath.Join(home, ".pyenv", "bin"),
		filepath.Join(home, ".poetry", "bin"),
		filepath.Join(home, ".linuxbrew", "bin"),
	}, dirs...)
}

// AugmentPath appends the existing user tool directories that are missing
// from PATH and returns the directories it added. Call it at startup and
// after installing a tool so the next lookup in the same process finds it.
func AugmentPath() []string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return augment(userToolDirs(home))
}

func augment(candidates []string) []string {
	current := os.Getenv("PATH")
	existing := make(map[string]bool)
	for _, p := range filepath.SplitList(current) {
		existing[p] = true
	}

	var toAdd []string
	for _, p := range candidates {
		if existing[p] {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			toAdd = append(toAdd, p)
			existing[p] = true
		}
	}

	if len(toAdd) > 0 {
		sep := string(os.PathListSeparator)
		if current == "" {
			os.Setenv("PATH", strings.Join(toAdd, sep))
		} else {
			os.Setenv("PATH", current+sep+strings.Join(toAdd, sep))
		}
	}
	return toAdd
}
