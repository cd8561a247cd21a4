package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitacora/internal/core"
)

func TestMemoryAppendPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	for i, act := range []string{"uno", "dos", "tres"} {
		idx, err := s.Append(ctx, core.Record{Date: "2024-01-01", Activity: act, Month: "Enero"})
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}

	recs, err := s.Records(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "uno", recs[0].Activity)
	assert.Equal(t, "tres", recs[2].Activity)
}

func TestMemoryMutateInPlace(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, err := s.Append(ctx, core.Record{Date: "2024-01-01", Hours: 2, Activity: "a", Month: "Enero"})
	require.NoError(t, err)
	_, err = s.Append(ctx, core.Record{Date: "2024-01-02", Hours: 3, Activity: "b", Month: "Enero"})
	require.NoError(t, err)

	err = s.Mutate(ctx, 0, core.FieldUpdates{Date: "2024-01-05", Hours: 4, Activity: "a2", Detail: "d", Month: "Enero"})
	require.NoError(t, err)

	recs, err := s.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, recs[0].Hours)
	assert.Equal(t, "a2", recs[0].Activity)
	assert.Equal(t, "b", recs[1].Activity, "edit must not reorder or touch neighbours")
}

func TestMemoryMutateOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	err := s.Mutate(ctx, 0, core.FieldUpdates{})
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)

	_, err = s.Append(ctx, core.Record{Date: "2024-01-01", Month: "Enero"})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Mutate(ctx, 1, core.FieldUpdates{}), core.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Mutate(ctx, -1, core.FieldUpdates{}), core.ErrIndexOutOfRange)

	_, err = s.Get(ctx, 5)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
}

func TestMemorySetEvidence(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, err := s.Append(ctx, core.Record{Date: "2024-01-01", Month: "Enero"})
	require.NoError(t, err)

	require.NoError(t, s.SetEvidence(ctx, 0, "/evidence/x.png"))
	rec, err := s.Get(ctx, 0)
	require.NoError(t, err)
	assert.True(t, rec.HasEvidence())

	assert.ErrorIs(t, s.SetEvidence(ctx, 3, "/evidence/y.png"), core.ErrIndexOutOfRange)
}

func TestMemoryAppendBatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	batch := []core.Record{
		{Date: "2024-01-01", Activity: "a", Month: "Enero"},
		{Date: "2024-01-02", Activity: "b", Month: "Enero"},
	}
	require.NoError(t, s.AppendBatch(ctx, batch))
	require.NoError(t, s.AppendBatch(ctx, nil))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryRecordsIsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, err := s.Append(ctx, core.Record{Date: "2024-01-01", Activity: "a", Month: "Enero"})
	require.NoError(t, err)

	recs, err := s.Records(ctx)
	require.NoError(t, err)
	recs[0].Activity = "tampered"

	rec, err := s.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", rec.Activity, "callers must not be able to mutate the store through a read")
}
