// Package store defines the record store contract and its in-memory
// implementation. A store is an ordered, insertion-order collection of
// records with positional identity: records are appended, mutated in
// place, and never deleted or reordered.
package store

import (
	"context"

	"bitacora/internal/core"
)

// RecordStore is the port every store backend implements. Mutations with
// an invalid index fail with core.ErrIndexOutOfRange.
type RecordStore interface {
	// Append adds one record at the end and returns its index.
	Append(ctx context.Context, r core.Record) (int, error)

	// AppendBatch adds records at the end in order. The batch either
	// fully lands or fully fails; no partial append.
	AppendBatch(ctx context.Context, recs []core.Record) error

	// Get returns the record at index.
	Get(ctx context.Context, index int) (core.Record, error)

	// Mutate overwrites the editable fields of the record at index.
	Mutate(ctx context.Context, index int, upd core.FieldUpdates) error

	// SetEvidence attaches an evidence reference to the record at index.
	SetEvidence(ctx context.Context, index int, ref string) error

	// Records returns the full ordered record sequence as of the call.
	// Projections derive from one such read and never cache it across
	// mutations.
	Records(ctx context.Context) ([]core.Record, error)

	// Len returns the number of stored records.
	Len(ctx context.Context) (int, error)
}
