package core

import (
	"math"
	"testing"
)

func TestParseHours(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"2", 2},
		{"2.5", 2.5},
		{"2,5", 2.5},
		{" 8 ", 8},
		{"0.25", 0.25},
		{"-3", -3},
		{"", 0},
		{"abc", 0},
		{"1.2.3", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-Inf", 0},
	}
	for _, tc := range cases {
		got := ParseHours(tc.in)
		if got != tc.out {
			t.Fatalf("ParseHours(%q) = %v, want %v", tc.in, got, tc.out)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("ParseHours(%q) produced non-finite %v", tc.in, got)
		}
	}
}

func TestCriteriaMatches(t *testing.T) {
	rec := Record{
		Date:     "2024-01-15",
		Hours:    2,
		Activity: "Desarrollo backend",
		Detail:   "endpoints",
		Month:    "Enero",
	}

	cases := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"empty criteria is identity", Criteria{}, true},
		{"date match", Criteria{Date: "2024-01-15"}, true},
		{"date mismatch", Criteria{Date: "2024-01-16"}, false},
		{"month match", Criteria{Month: "Enero"}, true},
		{"month is exact, not substring", Criteria{Month: "Ene"}, false},
		{"activity substring case-insensitive", Criteria{Activity: "BACKEND"}, true},
		{"activity no match", Criteria{Activity: "frontend"}, false},
		{"all predicates AND", Criteria{Date: "2024-01-15", Month: "Enero", Activity: "des"}, true},
		{"one failing predicate fails all", Criteria{Date: "2024-01-15", Month: "Febrero"}, false},
	}
	for _, tc := range cases {
		if got := tc.c.Matches(rec); got != tc.want {
			t.Fatalf("%s: Matches = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCriteriaIsZero(t *testing.T) {
	if !(Criteria{}).IsZero() {
		t.Fatal("empty criteria should be zero")
	}
	if (Criteria{Month: "Enero"}).IsZero() {
		t.Fatal("criteria with month should not be zero")
	}
}

func TestRecordApplyKeepsEvidence(t *testing.T) {
	ref := "/evidence/abc.png"
	r := Record{Date: "2024-01-01", Hours: 2, Activity: "A", Detail: "d", Month: "Enero", Evidence: &ref}
	r.Apply(FieldUpdates{Date: "2024-02-01", Hours: 3, Activity: "B", Detail: "e", Month: "Febrero"})
	if r.Hours != 3 || r.Month != "Febrero" {
		t.Fatalf("apply did not overwrite fields: %+v", r)
	}
	if !r.HasEvidence() || *r.Evidence != ref {
		t.Fatal("apply must not touch the evidence reference")
	}
}
