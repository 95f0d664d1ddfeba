package match

import (
	"testing"

	"github.com/kailas-cloud/attendex/internal/domain/feature"
)

func vec(values ...float64) feature.Vector {
	return feature.Vector(values)
}

func TestResolve_WithinTolerance(t *testing.T) {
	known := []feature.Known{
		{EmployeeID: "emp-1", Vector: vec(0, 0, 0)},
		{EmployeeID: "emp-2", Vector: vec(1, 1, 1)},
	}

	m, ok := Resolve(vec(0.1, 0, 0), known, 0.5)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.EmployeeID != "emp-1" {
		t.Errorf("matched %q, want emp-1", m.EmployeeID)
	}
	if m.Distance < 0.09 || m.Distance > 0.11 {
		t.Errorf("distance = %f, want ~0.1", m.Distance)
	}
}

func TestResolve_AllBeyondTolerance(t *testing.T) {
	known := []feature.Known{
		{EmployeeID: "emp-1", Vector: vec(0, 0, 0)},
	}

	if _, ok := Resolve(vec(3, 4, 0), known, 0.5); ok {
		t.Error("expected no match when minimum distance exceeds tolerance")
	}
}

func TestResolve_EmptyKnownSet(t *testing.T) {
	if _, ok := Resolve(vec(1, 2, 3), nil, 0.5); ok {
		t.Error("expected no match for empty known set")
	}
}

func TestResolve_TieBreaksToFirstIterated(t *testing.T) {
	// emp-a and emp-b are equidistant from the probe; first-seen wins, and
	// the outcome must be repeatable across runs.
	known := []feature.Known{
		{EmployeeID: "emp-a", Vector: vec(0.2, 0, 0)},
		{EmployeeID: "emp-b", Vector: vec(-0.2, 0, 0)},
	}

	for i := 0; i < 20; i++ {
		m, ok := Resolve(vec(0, 0, 0), known, 0.5)
		if !ok {
			t.Fatal("expected a match")
		}
		if m.EmployeeID != "emp-a" {
			t.Fatalf("run %d: matched %q, want emp-a", i, m.EmployeeID)
		}
	}
}

func TestResolve_PicksNearestNotFirst(t *testing.T) {
	known := []feature.Known{
		{EmployeeID: "far", Vector: vec(0.4, 0, 0)},
		{EmployeeID: "near", Vector: vec(0.1, 0, 0)},
	}

	m, ok := Resolve(vec(0, 0, 0), known, 0.5)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.EmployeeID != "near" {
		t.Errorf("matched %q, want near", m.EmployeeID)
	}
}

func TestResolve_DimensionMismatchNeverMatches(t *testing.T) {
	known := []feature.Known{
		{EmployeeID: "stale", Vector: vec(0, 0)},
	}

	if _, ok := Resolve(vec(0, 0, 0), known, 100); ok {
		t.Error("expected no match against a vector of different length")
	}
}
