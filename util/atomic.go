// util/atomic.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes a file at the given path by calling the provided
// render function with a writer that goes to a temporary file in the
// destination directory; only if render succeeds is the temporary file
// renamed to the final path. On any failure the temporary file is removed,
// so a partially-written destination is never left behind.
func AtomicWriteFile(path string, render func(w io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	if err = render(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
