package filer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// moveFile renames src to dst, falling back to copy plus delete when
// the rename crosses filesystems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Remove(src); err != nil {
		// Keep exactly one copy: if the source won't go, drop the
		// destination.
		os.Remove(dst)
		return errors.WithStack(err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(out.Sync())
}

// uniquePath appends " (n)" before the extension until the path is
// free.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := filepath.Base(path)
	stem = stem[:len(stem)-len(ext)]

	for i := 1; i < 1000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return path
}
