// Package storage persists the roll book. Every backend rewrites the whole
// record list on Save and returns it, in order, on Load.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/record"
)

// Backend kinds accepted by Open
const (
	KindFile     = "file"
	KindPebble   = "pebble"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// DefaultFileName is the flat file used when none is configured
const DefaultFileName = "students.txt"

// ErrStorageUnavailable wraps every failure to open, read or write the
// backing storage.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Backend loads and saves the full record list
type Backend interface {
	// Load returns every stored record in order. Missing storage is not an
	// error and yields an empty result.
	Load(ctx context.Context) (*codec.Result, error)

	// Save replaces the stored records with recs
	Save(ctx context.Context, recs []record.Record) error

	// Describe names the backend and its location for logs and output
	Describe() string

	Close() error
}

// Options configures Open
type Options struct {
	Kind     string
	DataDir  string
	FileName string
	DSN      string // postgres only
	Codec    *codec.LineCodec
}

// Open creates the backend named by opts.Kind
func Open(opts Options) (Backend, error) {
	if opts.Codec == nil {
		opts.Codec = codec.NewLineCodec(codec.ModeNaive, nil)
	}

	switch opts.Kind {
	case "", KindFile:
		name := opts.FileName
		if name == "" {
			name = DefaultFileName
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.DataDir, name)
		}
		return NewFileBackend(path, opts.Codec), nil
	case KindPebble:
		return OpenPebbleBackend(filepath.Join(opts.DataDir, "pebble"), opts.Codec)
	case KindSQLite:
		return OpenSQLiteBackend(filepath.Join(opts.DataDir, DefaultSQLiteFileName), opts.Codec)
	case KindPostgres:
		return OpenPostgresBackend(opts.DSN, opts.Codec)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want one of %s)", opts.Kind, strings.Join(Kinds(), ", "))
	}
}

// Kinds lists the backend names accepted by Open
func Kinds() []string {
	return []string{KindFile, KindPebble, KindSQLite, KindPostgres}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
