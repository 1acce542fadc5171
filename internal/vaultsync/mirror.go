package vaultsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/zeebo/blake3"
)

type mirrorStats struct {
	Copied  int
	Skipped int
}

// mirrorTree copies every regular file under src to the same relative path
// under dst. Files whose BLAKE3 digest already matches are left alone.
func mirrorTree(ctx context.Context, src, dst string) (mirrorStats, error) {
	var st mirrorStats
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return st, fmt.Errorf("create mirror dir: %w", err)
	}
	absDst, _ := filepath.Abs(dst)

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if abs, _ := filepath.Abs(path); abs == absDst {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		same, err := sameContent(path, target)
		if err != nil {
			return err
		}
		if same {
			st.Skipped++
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		st.Copied++
		return nil
	})
	return st, err
}

func digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func sameContent(src, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	if srcInfo.Size() != dstInfo.Size() {
		return false, nil
	}
	a, err := digest(src)
	if err != nil {
		return false, err
	}
	b, err := digest(dst)
	if err != nil {
		return false, err
	}
	return bytes.Equal(a, b), nil
}

func copyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(dst, f); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode().Perm())
}
