package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/record"
)

func TestSQLiteBackend_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollbook.db")
	ctx := context.Background()

	backend, err := OpenSQLiteBackend(path, testCodec(codec.ModeNaive))
	require.NoError(t, err)

	res, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	// names with commas survive because columns are typed
	require.NoError(t, backend.Save(ctx, sampleRecords()))
	res, err = backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), res.Records)
	assert.Equal(t, 3, res.LinesRead)

	shorter := []record.Record{sampleRecords()[2], sampleRecords()[0]}
	require.NoError(t, backend.Save(ctx, shorter))
	require.NoError(t, backend.Close())

	reopened, err := OpenSQLiteBackend(path, testCodec(codec.ModeNaive))
	require.NoError(t, err)
	defer reopened.Close()

	res, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, shorter, res.Records)

	require.NoError(t, reopened.Save(ctx, nil))
	res, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestSQLiteBackend_SkipsBlankNames(t *testing.T) {
	backend, err := OpenSQLiteBackend(filepath.Join(t.TempDir(), "rollbook.db"), testCodec(codec.ModeNaive))
	require.NoError(t, err)
	defer backend.Close()

	rows := []studentRow{
		{Position: 1, Roll: 1, Name: "Ada", Marks: 90},
		{Position: 2, Roll: 2, Name: "  ", Marks: 50},
	}
	require.NoError(t, backend.db.Create(&rows).Error)

	res, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []record.Record{{Roll: 1, Name: "Ada", Marks: 90}}, res.Records)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Line)
	assert.ErrorIs(t, res.Skipped[0], codec.MalformedRecordLine)
}

func TestSQLiteBackend_CancelledContext(t *testing.T) {
	backend, err := OpenSQLiteBackend(filepath.Join(t.TempDir(), "rollbook.db"), testCodec(codec.ModeNaive))
	require.NoError(t, err)
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, backend.Save(ctx, sampleRecords()), context.Canceled)
}

func TestOpenPostgresBackend_EmptyDSN(t *testing.T) {
	_, err := OpenPostgresBackend("", testCodec(codec.ModeNaive))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
