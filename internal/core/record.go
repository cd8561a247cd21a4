package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Record is one normalized logbook entry. Identity within a store is
// positional; there is no separate primary key.
type (
	Record struct {
		Date     string // opaque YYYY-MM-DD token, compared by equality only
		Hours    float64
		Activity string
		Detail   string
		Month    string
		Evidence *string // attachment reference, nil when absent
	}

	// FieldUpdates carries the five editable fields of an edit commit.
	// All of them are applied together or not at all.
	FieldUpdates struct {
		Date     string
		Hours    float64
		Activity string
		Detail   string
		Month    string
	}

	// Criteria is the active set of optional filter predicates. A zero
	// value for a field disables that predicate; active predicates
	// combine by logical AND.
	Criteria struct {
		Date     string // exact match
		Month    string // exact match
		Activity string // case-insensitive substring
	}
)

var ErrIndexOutOfRange = errors.New("record index out of range")

// HasEvidence reports whether an attachment reference is present.
// The core never inspects the reference itself.
func (r Record) HasEvidence() bool {
	return r.Evidence != nil && *r.Evidence != ""
}

// Apply overwrites the editable fields of r with u, leaving the
// evidence reference untouched.
func (r *Record) Apply(u FieldUpdates) {
	r.Date = u.Date
	r.Hours = u.Hours
	r.Activity = u.Activity
	r.Detail = u.Detail
	r.Month = u.Month
}

// IsZero reports whether no predicate is active (the identity filter).
func (c Criteria) IsZero() bool {
	return c.Date == "" && c.Month == "" && c.Activity == ""
}

// Matches evaluates all active predicates against r.
func (c Criteria) Matches(r Record) bool {
	if c.Date != "" && r.Date != c.Date {
		return false
	}
	if c.Month != "" && r.Month != c.Month {
		return false
	}
	if c.Activity != "" && !strings.Contains(strings.ToLower(r.Activity), strings.ToLower(c.Activity)) {
		return false
	}
	return true
}

// ParseHours coerces a raw hours value to a finite float64.
//
// It accepts both dot (2.5) and comma (2,5) decimal separators. Unparsable
// or non-finite input yields 0 by design: malformed numeric input is never
// an error in this system, it normalizes silently.
func ParseHours(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
