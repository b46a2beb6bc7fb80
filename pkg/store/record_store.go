package store

import (
	"fmt"
	"math"
	"sync"

	"github.com/ssargent/rollbook/pkg/record"
)

// RecordStore is an ordered, in-memory collection of student records.
// Records keep insertion order. Every method takes the store mutex, so a
// single store may be shared between concurrent shells.
type RecordStore struct {
	records []record.Record
	mutex   sync.Mutex
}

// Stats summarises the store for dashboards
type Stats struct {
	Total   int           `json:"total"`
	Average float64       `json:"average"`
	Top     record.Record `json:"top"`
	HasTop  bool          `json:"has_top"`
}

// NewRecordStore creates a store holding recs in the given order
func NewRecordStore(recs ...record.Record) *RecordStore {
	s := &RecordStore{}
	s.records = append(s.records, recs...)
	return s
}

// Add appends rec unless a record with the same roll number already exists.
// The record is checked with record.New first.
func (s *RecordStore) Add(rec record.Record) error {
	rec, err := record.New(rec.Roll, rec.Name, rec.Marks)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.indexOf(rec.Roll) >= 0 {
		return fmt.Errorf("%w: roll number %d", ErrDuplicateKey, rec.Roll)
	}
	s.records = append(s.records, rec)
	return nil
}

// FindByRoll returns the first record with the given roll number and its
// position in the store.
func (s *RecordStore) FindByRoll(roll int) (record.Record, int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pos := s.indexOf(roll)
	if pos < 0 {
		return record.Record{}, -1, fmt.Errorf("%w: roll number %d", ErrNotFound, roll)
	}
	return s.records[pos], pos, nil
}

// UpdateAt replaces the name and marks of the record at pos. The roll number
// is left untouched.
func (s *RecordStore) UpdateAt(pos int, name string, marks float64) (record.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.updateAt(pos, name, marks)
}

// UpdateByRoll locates a record by roll number and updates it in one step.
func (s *RecordStore) UpdateByRoll(roll int, name string, marks float64) (record.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pos := s.indexOf(roll)
	if pos < 0 {
		return record.Record{}, fmt.Errorf("%w: roll number %d", ErrNotFound, roll)
	}
	return s.updateAt(pos, name, marks)
}

// RemoveAt deletes the record at pos, keeping the order of the rest.
func (s *RecordStore) RemoveAt(pos int) (record.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.removeAt(pos)
}

// RemoveByRoll locates a record by roll number and removes it in one step.
func (s *RecordStore) RemoveByRoll(roll int) (record.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pos := s.indexOf(roll)
	if pos < 0 {
		return record.Record{}, fmt.Errorf("%w: roll number %d", ErrNotFound, roll)
	}
	return s.removeAt(pos)
}

// All returns a copy of every record in store order
func (s *RecordStore) All() []record.Record {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Replace swaps the store contents for recs, e.g. after a reload from disk.
func (s *RecordStore) Replace(recs []record.Record) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records = make([]record.Record, len(recs))
	copy(s.records, recs)
}

// Len returns the number of records
func (s *RecordStore) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.records)
}

// Stats computes the record count, the average marks and the top scorer.
// The top scorer is the first record holding the highest marks.
func (s *RecordStore) Stats() Stats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st := Stats{Total: len(s.records)}
	if st.Total == 0 {
		return st
	}

	sum := 0.0
	topMarks := math.Inf(-1)
	for _, rec := range s.records {
		sum += rec.Marks
		if rec.Marks > topMarks {
			topMarks = rec.Marks
			st.Top = rec
			st.HasTop = true
		}
	}
	st.Average = sum / float64(st.Total)
	return st
}

func (s *RecordStore) indexOf(roll int) int {
	for i, rec := range s.records {
		if rec.Roll == roll {
			return i
		}
	}
	return -1
}

func (s *RecordStore) updateAt(pos int, name string, marks float64) (record.Record, error) {
	if pos < 0 || pos >= len(s.records) {
		return record.Record{}, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	name, err := record.ParseName(name)
	if err != nil {
		return record.Record{}, err
	}
	if err := record.CheckMarks(marks); err != nil {
		return record.Record{}, err
	}
	s.records[pos].Name = name
	s.records[pos].Marks = marks
	return s.records[pos], nil
}

func (s *RecordStore) removeAt(pos int) (record.Record, error) {
	if pos < 0 || pos >= len(s.records) {
		return record.Record{}, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	removed := s.records[pos]
	s.records = append(s.records[:pos], s.records[pos+1:]...)
	return removed, nil
}
