package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitacora/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreAppendAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, act := range []string{"uno", "dos", "tres"} {
		idx, err := s.Append(ctx, core.Record{Date: "2024-01-01", Hours: float64(i), Activity: act, Month: "Enero"})
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}

	recs, err := s.Records(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "uno", recs[0].Activity)
	assert.Equal(t, "tres", recs[2].Activity)
	assert.Nil(t, recs[0].Evidence)
}

func TestSQLiteStoreMutate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Append(ctx, core.Record{Date: "2024-01-01", Hours: 2, Activity: "a", Month: "Enero"})
	require.NoError(t, err)

	err = s.Mutate(ctx, 0, core.FieldUpdates{Date: "2024-01-03", Hours: 5, Activity: "b", Detail: "d", Month: "Enero"})
	require.NoError(t, err)

	rec, err := s.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, rec.Hours)
	assert.Equal(t, "b", rec.Activity)

	assert.ErrorIs(t, s.Mutate(ctx, 9, core.FieldUpdates{}), core.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Mutate(ctx, -1, core.FieldUpdates{}), core.ErrIndexOutOfRange)
}

func TestSQLiteStoreEvidence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Append(ctx, core.Record{Date: "2024-01-01", Month: "Enero"})
	require.NoError(t, err)

	require.NoError(t, s.SetEvidence(ctx, 0, "/evidence/x.png"))
	rec, err := s.Get(ctx, 0)
	require.NoError(t, err)
	require.True(t, rec.HasEvidence())
	assert.Equal(t, "/evidence/x.png", *rec.Evidence)

	// Evidence survives a field mutation.
	require.NoError(t, s.Mutate(ctx, 0, core.FieldUpdates{Date: "2024-01-02", Month: "Enero"}))
	rec, err = s.Get(ctx, 0)
	require.NoError(t, err)
	assert.True(t, rec.HasEvidence())
}

func TestSQLiteStoreAppendBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	batch := []core.Record{
		{Date: "2024-01-01", Activity: "a", Month: "Enero"},
		{Date: "2024-01-02", Activity: "b", Month: "Enero"},
		{Date: "2024-01-03", Activity: "c", Month: "Febrero"},
	}
	require.NoError(t, s.AppendBatch(ctx, batch))
	require.NoError(t, s.AppendBatch(ctx, nil))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recs, err := s.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", recs[0].Activity)
	assert.Equal(t, "c", recs[2].Activity)
}
