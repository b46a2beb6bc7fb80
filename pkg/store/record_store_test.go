package store

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rollbook/pkg/record"
)

func sampleRecords() []record.Record {
	return []record.Record{
		{Roll: 101, Name: "Alice", Marks: 87.5},
		{Roll: 102, Name: "Bob", Marks: 72},
		{Roll: 103, Name: "Chandra", Marks: 91.25},
	}
}

func TestRecordStore_AddPreservesInsertionOrder(t *testing.T) {
	store := NewRecordStore()
	for _, rec := range sampleRecords() {
		require.NoError(t, store.Add(rec))
	}

	assert.Equal(t, sampleRecords(), store.All())
	assert.Equal(t, 3, store.Len())
}

func TestRecordStore_AddDuplicate(t *testing.T) {
	store := NewRecordStore(sampleRecords()...)
	before := store.All()

	err := store.Add(record.Record{Roll: 102, Name: "Impostor", Marks: 1})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "102")

	assert.Equal(t, before, store.All())
}

func TestRecordStore_FindByRoll(t *testing.T) {
	store := NewRecordStore(sampleRecords()...)

	rec, pos, err := store.FindByRoll(103)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	assert.Equal(t, "Chandra", rec.Name)

	_, pos, err = store.FindByRoll(999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, -1, pos)
}

func TestRecordStore_FindAfterDelete(t *testing.T) {
	store := NewRecordStore()
	require.NoError(t, store.Add(record.Record{Roll: 5, Name: "Eve", Marks: 60}))

	_, _, err := store.FindByRoll(5)
	require.NoError(t, err)

	_, err = store.RemoveByRoll(5)
	require.NoError(t, err)

	_, _, err = store.FindByRoll(5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordStore_UpdateAt(t *testing.T) {
	t.Run("changes only name and marks", func(t *testing.T) {
		store := NewRecordStore(sampleRecords()...)

		updated, err := store.UpdateAt(1, "Robert", 80)
		require.NoError(t, err)
		assert.Equal(t, record.Record{Roll: 102, Name: "Robert", Marks: 80}, updated)

		want := sampleRecords()
		want[1] = updated
		assert.Equal(t, want, store.All())
	})

	t.Run("position out of range", func(t *testing.T) {
		store := NewRecordStore(sampleRecords()...)

		_, err := store.UpdateAt(3, "Nobody", 1)
		assert.ErrorIs(t, err, ErrInvalidPosition)
		_, err = store.UpdateAt(-1, "Nobody", 1)
		assert.ErrorIs(t, err, ErrInvalidPosition)
		assert.Equal(t, sampleRecords(), store.All())
	})

	t.Run("empty name rejected", func(t *testing.T) {
		store := NewRecordStore(sampleRecords()...)

		_, err := store.UpdateAt(0, "  ", 50)
		assert.ErrorIs(t, err, record.ErrInvalidInput)
		assert.Equal(t, sampleRecords(), store.All())
	})
}

func TestRecordStore_UpdateByRoll(t *testing.T) {
	store := NewRecordStore(sampleRecords()...)

	updated, err := store.UpdateByRoll(101, " Alicia ", 99)
	require.NoError(t, err)
	assert.Equal(t, record.Record{Roll: 101, Name: "Alicia", Marks: 99}, updated)

	_, err = store.UpdateByRoll(404, "Ghost", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordStore_RejectsUnencodableValues(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		marks float64
	}{
		{name: "line feed in name", text: "Ann\nLee", marks: 90},
		{name: "carriage return in name", text: "Ann\rLee", marks: 90},
		{name: "NaN marks", text: "Ann", marks: math.NaN()},
		{name: "infinite marks", text: "Ann", marks: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewRecordStore(sampleRecords()...)

			err := store.Add(record.Record{Roll: 7, Name: tt.text, Marks: tt.marks})
			assert.ErrorIs(t, err, record.ErrInvalidInput)

			_, err = store.UpdateByRoll(101, tt.text, tt.marks)
			assert.ErrorIs(t, err, record.ErrInvalidInput)

			assert.Equal(t, sampleRecords(), store.All())
		})
	}
}

func TestRecordStore_RemoveAt(t *testing.T) {
	store := NewRecordStore(sampleRecords()...)

	removed, err := store.RemoveAt(1)
	require.NoError(t, err)
	assert.Equal(t, 102, removed.Roll)

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, 101, all[0].Roll)
	assert.Equal(t, 103, all[1].Roll)

	_, err = store.RemoveAt(5)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestRecordStore_RemoveOnlyRecord(t *testing.T) {
	store := NewRecordStore(record.Record{Roll: 1, Name: "Solo", Marks: 50})

	_, err := store.RemoveAt(0)
	require.NoError(t, err)

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.All())
}

func TestRecordStore_AllReturnsCopy(t *testing.T) {
	store := NewRecordStore(sampleRecords()...)

	all := store.All()
	all[0].Name = "Mutated"

	rec, _, err := store.FindByRoll(101)
	require.NoError(t, err)
	assert.Equal(t, "Alice", rec.Name)
}

func TestRecordStore_Replace(t *testing.T) {
	store := NewRecordStore(sampleRecords()...)

	store.Replace([]record.Record{{Roll: 9, Name: "Nine", Marks: 9}})
	assert.Equal(t, []record.Record{{Roll: 9, Name: "Nine", Marks: 9}}, store.All())

	store.Replace(nil)
	assert.Equal(t, 0, store.Len())
}

func TestRecordStore_Stats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		st := NewRecordStore().Stats()
		assert.Equal(t, Stats{}, st)
		assert.False(t, st.HasTop)
	})

	t.Run("average and top", func(t *testing.T) {
		st := NewRecordStore(sampleRecords()...).Stats()
		assert.Equal(t, 3, st.Total)
		assert.InDelta(t, (87.5+72+91.25)/3, st.Average, 1e-9)
		assert.True(t, st.HasTop)
		assert.Equal(t, 103, st.Top.Roll)
	})

	t.Run("first record wins a tie", func(t *testing.T) {
		st := NewRecordStore(
			record.Record{Roll: 1, Name: "A", Marks: 90},
			record.Record{Roll: 2, Name: "B", Marks: 90},
		).Stats()
		assert.Equal(t, 1, st.Top.Roll)
	})
}

func TestRecordStore_ConcurrentAdds(t *testing.T) {
	store := NewRecordStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(roll int) {
			defer wg.Done()
			_ = store.Add(record.Record{Roll: roll, Name: "N", Marks: 1})
			_ = store.Add(record.Record{Roll: roll, Name: "dup", Marks: 2})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
