package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Some references:
// - https://lwn.net/Articles/457667/
// - https://www.joeshaw.org/dont-defer-close-on-writable-files/

var (
	errCancelled = errors.New("cancelled")

	_ io.WriteCloser = &atomicFile{}
)

// atomicFile writes to a temporary file in the destination directory and
// renames it over the destination on Close. If anything fails the temporary
// file is removed and the destination is left untouched.
type atomicFile struct {
	dstPath string
	dir     string
	tmpPath string
	tmpFile *os.File
	perm    os.FileMode
	err     error
}

func newAtomicFile(path string, perm os.FileMode) (*atomicFile, error) {
	dir, name := filepath.Split(path)
	if name == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	tmpFile, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return nil, err
	}

	return &atomicFile{
		dstPath: path,
		dir:     dir,
		tmpPath: tmpFile.Name(),
		tmpFile: tmpFile,
		perm:    perm,
	}, nil
}

func (f *atomicFile) handleError(err error) error {
	if err == nil {
		return nil
	}
	// remember the first error
	if f.err == nil {
		f.err = err
	}
	_ = f.Close()
	return err
}

func (f *atomicFile) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.tmpFile.Write(d)
	return n, f.handleError(err)
}

// removeIfNotClosed discards the temporary file when Close was never
// reached. Meant to be deferred; a no-op after Close.
func (f *atomicFile) removeIfNotClosed() {
	if f == nil || f.tmpFile == nil {
		return
	}
	f.err = errCancelled
	_ = f.Close()
}

// Close flushes the temporary file and renames it over the destination.
// Safe to call more than once; later calls return the first error.
func (f *atomicFile) Close() error {
	if f.tmpFile == nil {
		return f.err
	}
	tmpFile := f.tmpFile
	f.tmpFile = nil

	errChmod := tmpFile.Chmod(f.perm)
	errSync := tmpFile.Sync()
	errClose := tmpFile.Close()

	didRename := false
	defer func() {
		if !didRename {
			_ = os.Remove(f.tmpPath)
		}
	}()

	if f.err != nil {
		return f.err
	}

	err := errChmod
	if err == nil {
		err = errSync
	}
	if err == nil {
		err = errClose
	}

	if err == nil {
		err = os.Rename(f.tmpPath, f.dstPath)
		didRename = err == nil
		// sync the directory so the rename survives a crash
		if fdir, _ := os.Open(f.dir); fdir != nil {
			_ = fdir.Sync()
			_ = fdir.Close()
		}
	}

	f.err = err
	return err
}
