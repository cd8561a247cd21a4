package store

import (
	"context"
	"fmt"
	"sync"

	"bitacora/internal/core"
)

// Memory is the default session-scoped store: a mutex-guarded slice.
// The guard exists only for the ingestion goroutines; handler flows are
// otherwise sequential.
type Memory struct {
	mu    sync.RWMutex
	items []core.Record
}

var _ RecordStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Append(_ context.Context, r core.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return len(s.items) - 1, nil
}

func (s *Memory) AppendBatch(_ context.Context, recs []core.Record) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, recs...)
	return nil
}

func (s *Memory) Get(_ context.Context, index int) (core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.items) {
		return core.Record{}, fmt.Errorf("get record %d of %d: %w", index, len(s.items), core.ErrIndexOutOfRange)
	}
	return s.items[index], nil
}

func (s *Memory) Mutate(_ context.Context, index int, upd core.FieldUpdates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("mutate record %d of %d: %w", index, len(s.items), core.ErrIndexOutOfRange)
	}
	s.items[index].Apply(upd)
	return nil
}

func (s *Memory) SetEvidence(_ context.Context, index int, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("set evidence on record %d of %d: %w", index, len(s.items), core.ErrIndexOutOfRange)
	}
	s.items[index].Evidence = &ref
	return nil
}

func (s *Memory) Records(_ context.Context) ([]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Record, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Memory) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}
