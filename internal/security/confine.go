package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathOutsideRoot is returned when a directory escapes its root.
var ErrPathOutsideRoot = errors.New("path outside root")

// ConfineDir resolves root and dir (relative to root unless absolute) with
// symlinks followed, and fails unless dir lands inside root. Neither needs
// to exist yet.
func ConfineDir(root, dir string) (realRoot, realDir string, err error) {
	if strings.TrimSpace(root) == "" {
		return "", "", errors.New("root is empty")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("abs root: %w", err)
	}
	if realRoot, err = realPath(absRoot); err != nil {
		return "", "", err
	}

	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(absRoot, target)
	}
	if realDir, err = realPath(filepath.Clean(target)); err != nil {
		return "", "", err
	}

	rel, err := filepath.Rel(realRoot, realDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, dir)
	}
	return realRoot, realDir, nil
}

// realPath follows symlinks in the longest existing prefix of path and
// appends the missing components unchanged.
func realPath(path string) (string, error) {
	var missing []string
	cur := path
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("resolve %s: %w", cur, err)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
}
