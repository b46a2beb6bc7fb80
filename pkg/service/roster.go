// Package service ties the record store to a storage backend. Shells call
// a Roster instead of touching the store or the backend directly: the roster
// loads once at startup and saves the full store after every mutation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/record"
	"github.com/ssargent/rollbook/pkg/storage"
	"github.com/ssargent/rollbook/pkg/store"
)

// Roster is the shell-facing API of the roll book
type Roster struct {
	store   *store.RecordStore
	backend storage.Backend
	logger  *slog.Logger

	// serialises saves so the last save always writes the newest snapshot
	saveMutex sync.Mutex
}

// NewRoster creates an empty roster persisted through backend
func NewRoster(backend storage.Backend, logger *slog.Logger) *Roster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roster{
		store:   store.NewRecordStore(),
		backend: backend,
		logger:  logger,
	}
}

// Backend returns the storage backend
func (r *Roster) Backend() storage.Backend {
	return r.backend
}

// LoadAll replaces the in-memory records with the stored ones. On error the
// in-memory records are left as they were.
func (r *Roster) LoadAll(ctx context.Context) (*codec.Result, error) {
	res, err := r.backend.Load(ctx)
	if err != nil {
		r.logger.Error("failed to load records", "backend", r.backend.Describe(), "error", err)
		return nil, err
	}

	r.store.Replace(res.Records)
	r.logger.Info("loaded records",
		"backend", r.backend.Describe(),
		"records", len(res.Records),
		"skipped", len(res.Skipped))
	return res, nil
}

// SaveAll writes every record to the backend
func (r *Roster) SaveAll(ctx context.Context) error {
	r.saveMutex.Lock()
	defer r.saveMutex.Unlock()

	recs := r.store.All()
	if err := r.backend.Save(ctx, recs); err != nil {
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
		}
		r.logger.Error("failed to save records", "backend", r.backend.Describe(), "error", err)
		return err
	}
	r.logger.Debug("saved records", "backend", r.backend.Describe(), "records", len(recs))
	return nil
}

// Add creates a record and saves. A save failure is returned together with
// the added record; the record stays in memory.
func (r *Roster) Add(ctx context.Context, roll int, name string, marks float64) (record.Record, error) {
	rec, err := record.New(roll, name, marks)
	if err != nil {
		return record.Record{}, err
	}
	if err := r.store.Add(rec); err != nil {
		return record.Record{}, err
	}
	return rec, r.SaveAll(ctx)
}

// Find returns the record with the given roll number
func (r *Roster) Find(roll int) (record.Record, error) {
	rec, _, err := r.store.FindByRoll(roll)
	return rec, err
}

// Update changes the name and marks of the record with the given roll
// number. The roll number itself cannot be changed.
func (r *Roster) Update(ctx context.Context, roll int, name string, marks float64) (record.Record, error) {
	rec, err := r.store.UpdateByRoll(roll, name, marks)
	if err != nil {
		return record.Record{}, err
	}
	return rec, r.SaveAll(ctx)
}

// Delete removes the record with the given roll number
func (r *Roster) Delete(ctx context.Context, roll int) (record.Record, error) {
	rec, err := r.store.RemoveByRoll(roll)
	if err != nil {
		return record.Record{}, err
	}
	return rec, r.SaveAll(ctx)
}

// List returns every record in order
func (r *Roster) List() []record.Record {
	return r.store.All()
}

// Stats summarises the records
func (r *Roster) Stats() store.Stats {
	return r.store.Stats()
}

// Close releases the backend
func (r *Roster) Close() error {
	return r.backend.Close()
}
