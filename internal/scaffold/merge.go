package scaffold

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// MergeResult lists merged entries by path relative to the destination.
type MergeResult struct {
	Copied  []string
	Skipped []string
}

// Merge copies every entry of src into dst unless an entry of the same name
// already exists there. Existing entries are never overwritten; directories
// present on both sides are merged recursively.
func Merge(src, dst string) (MergeResult, error) {
	var res MergeResult
	err := mergeDir(src, dst, "", &res)
	return res, err
}

func mergeDir(src, dst, rel string, res *MergeResult) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		r := filepath.Join(rel, e.Name())

		existing, err := os.Lstat(d)
		switch {
		case err == nil:
			if e.IsDir() && existing.IsDir() {
				if err := mergeDir(s, d, r, res); err != nil {
					return err
				}
				continue
			}
			res.Skipped = append(res.Skipped, r)
		case os.IsNotExist(err):
			if err := copyEntry(s, d); err != nil {
				return fmt.Errorf("copy %s: %w", r, err)
			}
			res.Copied = append(res.Copied, r)
		default:
			return err
		}
	}
	return nil
}

func copyEntry(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		return copyTree(src, dst)
	default:
		return copyFile(src, dst, info)
	}
}

// copyTree copies src to dst, which must not exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.IsDir():
			return os.Mkdir(target, info.Mode().Perm())
		default:
			return copyFile(path, target, info)
		}
	})
}

// copyFile copies content, permission bits and modification time.
func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
