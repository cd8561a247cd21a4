// Package session manages the per-row edit lifecycle: a row is either
// Viewing or Editing, and an edit either commits all five editable
// fields back into the store atomically or leaves the record untouched.
// There is deliberately no cancel transition.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"bitacora/internal/core"
	"bitacora/internal/store"
)

// Mode is the explicit edit state of a row, decoupled from whatever
// label the renderer puts on the toggle button.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

var (
	ErrAlreadyEditing = errors.New("record is already being edited")
	ErrNoSession      = errors.New("record is not being edited")
)

// Pending is the working copy of a record's editable fields, captured
// at BeginEdit and isolated from the store until commit. Values stay as
// strings: coercion happens only at commit time.
type Pending struct {
	Date     string
	Hours    string
	Activity string
	Detail   string
	Month    string
}

// Manager tracks at most one edit session per row. Sessions on distinct
// rows are independent; re-entering an Editing row is rejected.
type Manager struct {
	mu       sync.Mutex
	store    store.RecordStore
	sessions map[int]Pending
}

func NewManager(st store.RecordStore) *Manager {
	return &Manager{store: st, sessions: make(map[int]Pending)}
}

// Mode reports the edit state of the row at index.
func (m *Manager) Mode(index int) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[index]; ok {
		return Editing
	}
	return Viewing
}

// Pending returns the working copy for an Editing row.
func (m *Manager) Pending(index int) (Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.sessions[index]
	return p, ok
}

// BeginEdit transitions the row at index from Viewing to Editing,
// seeding the working copy from the record's current values.
func (m *Manager) BeginEdit(ctx context.Context, index int) (Pending, error) {
	rec, err := m.store.Get(ctx, index)
	if err != nil {
		return Pending{}, fmt.Errorf("begin edit: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[index]; ok {
		return Pending{}, fmt.Errorf("begin edit on record %d: %w", index, ErrAlreadyEditing)
	}

	p := Pending{
		Date:     rec.Date,
		Hours:    strconv.FormatFloat(rec.Hours, 'f', -1, 64),
		Activity: rec.Activity,
		Detail:   rec.Detail,
		Month:    rec.Month,
	}
	m.sessions[index] = p
	return p, nil
}

// Commit overlays the submitted changes onto the working copy, coerces
// the hours field through the same rule the normalizer uses (malformed
// input becomes 0, never an error), writes all five fields to the store
// in one mutate, and destroys the session. On store failure the session
// survives and the record is unchanged.
//
// Recognized change keys: date, hours, activity, detail, month. Keys
// not present keep their pending value.
func (m *Manager) Commit(ctx context.Context, index int, changes map[string]string) error {
	m.mu.Lock()
	p, ok := m.sessions[index]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("commit edit on record %d: %w", index, ErrNoSession)
	}

	if v, ok := changes["date"]; ok {
		p.Date = v
	}
	if v, ok := changes["hours"]; ok {
		p.Hours = v
	}
	if v, ok := changes["activity"]; ok {
		p.Activity = v
	}
	if v, ok := changes["detail"]; ok {
		p.Detail = v
	}
	if v, ok := changes["month"]; ok {
		p.Month = v
	}

	upd := core.FieldUpdates{
		Date:     p.Date,
		Hours:    core.ParseHours(p.Hours),
		Activity: p.Activity,
		Detail:   p.Detail,
		Month:    p.Month,
	}
	if err := m.store.Mutate(ctx, index, upd); err != nil {
		return fmt.Errorf("commit edit: %w", err)
	}

	m.mu.Lock()
	delete(m.sessions, index)
	m.mu.Unlock()
	return nil
}
