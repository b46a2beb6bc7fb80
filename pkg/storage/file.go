package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/record"
)

// FileBackend keeps the records in a single flat text file
type FileBackend struct {
	path  string
	codec *codec.LineCodec
}

// NewFileBackend creates a backend for the file at path
func NewFileBackend(path string, c *codec.LineCodec) *FileBackend {
	return &FileBackend{path: path, codec: c}
}

// Path returns the backing file path
func (b *FileBackend) Path() string {
	return b.path
}

// Load decodes the backing file. A missing file yields an empty result.
func (b *FileBackend) Load(ctx context.Context) (*codec.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &codec.Result{}, nil
		}
		return nil, unavailable("open "+b.path, err)
	}
	defer f.Close()

	res, err := b.codec.Decode(f)
	if err != nil {
		return nil, unavailable("read "+b.path, err)
	}
	return res, nil
}

// Save rewrites the whole file. The new contents replace the old file
// atomically, so a failed save leaves the previous file intact.
func (b *FileBackend) Save(ctx context.Context, recs []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.replace(func(w io.Writer) error {
		return b.codec.Encode(w, recs)
	})
}

// replace writes the new contents through write into a temporary file and
// renames it over the backing file only when write and the flush succeed.
func (b *FileBackend) replace(write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return unavailable("create data dir", err)
	}

	f, err := newAtomicFile(b.path, 0644)
	if err != nil {
		return unavailable("create "+b.path, err)
	}
	defer f.removeIfNotClosed()

	if err := write(f); err != nil {
		return unavailable("write "+b.path, err)
	}
	if err := f.Close(); err != nil {
		return unavailable("replace "+b.path, err)
	}
	return nil
}

// Describe implements Backend
func (b *FileBackend) Describe() string {
	return "file:" + b.path
}

// Close implements Backend; the file is never held open between calls.
func (b *FileBackend) Close() error {
	return nil
}
