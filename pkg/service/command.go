package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/record"
	"github.com/ssargent/rollbook/pkg/storage"
	"github.com/ssargent/rollbook/pkg/store"
)

// Op names a shell request
type Op string

const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpSearch  Op = "search"
	OpList    Op = "list"
	OpRefresh Op = "refresh"
	OpStats   Op = "stats"
)

// Command is a request from a shell. Fields carry the raw text the user
// typed; Dispatch validates them.
type Command struct {
	Op    Op
	Roll  string
	Name  string
	Marks string
}

// Result is the outcome of a dispatched command. Only the fields relevant
// to the command's Op are set.
type Result struct {
	Op      Op
	Record  *record.Record
	Records []record.Record
	Stats   *store.Stats
	Load    *codec.Result
}

// Dispatch validates and executes cmd. For mutations a non-nil Result may
// come back together with a storage error: the change was applied in memory
// but could not be saved.
func (r *Roster) Dispatch(ctx context.Context, cmd Command) (*Result, error) {
	res := &Result{Op: cmd.Op}

	switch cmd.Op {
	case OpAdd, OpUpdate:
		roll, err := record.ParseRoll(cmd.Roll)
		if err != nil {
			return nil, err
		}
		name, err := record.ParseName(cmd.Name)
		if err != nil {
			return nil, err
		}
		marks, err := record.ParseMarks(cmd.Marks)
		if err != nil {
			return nil, err
		}

		var rec record.Record
		if cmd.Op == OpAdd {
			rec, err = r.Add(ctx, roll, name, marks)
		} else {
			rec, err = r.Update(ctx, roll, name, marks)
		}
		return mutationResult(res, rec, err)

	case OpDelete:
		roll, err := record.ParseRoll(cmd.Roll)
		if err != nil {
			return nil, err
		}
		rec, err := r.Delete(ctx, roll)
		return mutationResult(res, rec, err)

	case OpSearch:
		roll, err := record.ParseRoll(cmd.Roll)
		if err != nil {
			return nil, err
		}
		rec, err := r.Find(roll)
		if err != nil {
			return nil, err
		}
		res.Record = &rec
		return res, nil

	case OpList:
		res.Records = r.List()
		return res, nil

	case OpRefresh:
		load, err := r.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		res.Load = load
		res.Records = r.List()
		return res, nil

	case OpStats:
		st := r.Stats()
		res.Stats = &st
		return res, nil

	default:
		return nil, fmt.Errorf("%w: unknown command %q", record.ErrInvalidInput, cmd.Op)
	}
}

// mutationResult keeps the affected record when only the save failed
func mutationResult(res *Result, rec record.Record, err error) (*Result, error) {
	if err != nil && !errors.Is(err, storage.ErrStorageUnavailable) {
		return nil, err
	}
	res.Record = &rec
	return res, err
}
