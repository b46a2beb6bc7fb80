package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/record"
)

var (
	recordPrefix = []byte("rec/")
	// first key after every "rec/..." key
	recordUpper = []byte("rec0")
)

// PebbleBackend stores one encoded line per record in a Pebble database.
// Keys are the record prefix followed by a KSUID from a single sequence, so
// key order matches store order.
type PebbleBackend struct {
	db    *pebble.DB
	dir   string
	codec *codec.LineCodec
}

// OpenPebbleBackend opens (or creates) the database in dir
func OpenPebbleBackend(dir string, c *codec.LineCodec) (*PebbleBackend, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, unavailable("open pebble "+dir, err)
	}
	return &PebbleBackend{db: db, dir: dir, codec: c}, nil
}

// Load decodes every stored line in key order
func (b *PebbleBackend) Load(ctx context.Context) (*codec.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := b.db.NewIter(&pebble.IterOptions{
		LowerBound: recordPrefix,
		UpperBound: recordUpper,
	})
	if err != nil {
		return nil, unavailable("iterate records", err)
	}

	var buf bytes.Buffer
	for iter.First(); iter.Valid(); iter.Next() {
		buf.Write(iter.Value())
		buf.WriteByte('\n')
	}
	if err := iter.Error(); err != nil {
		_ = iter.Close()
		return nil, unavailable("iterate records", err)
	}
	if err := iter.Close(); err != nil {
		return nil, unavailable("close iterator", err)
	}

	return b.codec.Decode(&buf)
}

// Save replaces every stored record in a single synced batch
func (b *PebbleBackend) Save(ctx context.Context, recs []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := b.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange(recordPrefix, recordUpper, nil); err != nil {
		return unavailable("clear records", err)
	}

	seq := ksuid.Sequence{Seed: ksuid.New()}
	for i, rec := range recs {
		id, err := seq.Next()
		if err != nil {
			return unavailable(fmt.Sprintf("allocate key for record %d", i), err)
		}
		key := append(append([]byte{}, recordPrefix...), id.Bytes()...)
		if err := batch.Set(key, []byte(b.codec.EncodeLine(rec)), nil); err != nil {
			return unavailable("stage record", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return unavailable("commit records", err)
	}
	return nil
}

// Describe implements Backend
func (b *PebbleBackend) Describe() string {
	return "pebble:" + b.dir
}

// Close closes the database
func (b *PebbleBackend) Close() error {
	return b.db.Close()
}
